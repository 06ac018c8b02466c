package validate

import (
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

func testRevision(t *testing.T) *revision.Descriptor {
	t.Helper()
	r := revision.Default()
	d, ok := r.FindByCommit(0x514a3fb)
	if !ok {
		t.Fatal("missing test fixture revision")
	}
	return d
}

func local(t *testing.T, rev *revision.Descriptor, gt token.GlobalToken) int {
	t.Helper()
	id, ok := rev.LocalTokenFor(gt)
	if !ok {
		t.Fatalf("revision lacks token %s", gt)
	}
	return id
}

func funcIndex(t *testing.T, rev *revision.Descriptor, name string) int {
	t.Helper()
	for i, n := range rev.FunctionTable {
		if n == name {
			return i
		}
	}
	t.Fatalf("revision lacks function %q", name)
	return -1
}

func TestValidatePassOnWellFormedTokens(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{"speed"},
		Constants:     []variant.Value{variant.Int(5)},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PR_VAR), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_IDENTIFIER), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_OP_ASSIGN), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_CONSTANT), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_NEWLINE), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_EOF), 0),
		},
		Lines: map[int]int{}, EndLines: map[int]int{}, Columns: map[int]int{},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != PASS {
		t.Fatalf("expected PASS, got %s (%s)", got.Outcome, got.Reason)
	}
}

func TestValidateFailsOnFormatVersionMismatch(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{FormatVersion: rev.BytecodeVersion + 1}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL, got %s", got.Outcome)
	}
}

func TestValidateFailsOnOutOfRangeLocalID(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Tokens:        []bufcodec.EncodedToken{bufcodec.NewEncodedToken(len(rev.TokenTable)+5, 0)},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL for out-of-range local id, got %s", got.Outcome)
	}
}

func TestValidateFailsOnOutOfRangeBuiltinIndex(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_BUILT_IN_FUNC), uint32(len(rev.FunctionTable)+1)),
		},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL for out-of-range built-in index, got %s", got.Outcome)
	}
}

func TestValidateFailsOnBuiltinArity(t *testing.T) {
	rev := testRevision(t)
	idx := funcIndex(t, rev, "print")
	// print() with zero args; "print" requires at least 1.
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_BUILT_IN_FUNC), uint32(idx)),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PARENTHESIS_OPEN), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PARENTHESIS_CLOSE), 0),
		},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL for print() arity violation, got %s (%s)", got.Outcome, got.Reason)
	}
}

func TestValidatePassesBuiltinArityWithinRange(t *testing.T) {
	rev := testRevision(t)
	idx := funcIndex(t, rev, "print")
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{},
		Constants:     []variant.Value{variant.String("hi")},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_BUILT_IN_FUNC), uint32(idx)),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PARENTHESIS_OPEN), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_CONSTANT), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PARENTHESIS_CLOSE), 0),
		},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != PASS {
		t.Fatalf("expected PASS for print(\"hi\"), got %s (%s)", got.Outcome, got.Reason)
	}
}

func TestValidateFailsOnBarePassNotFollowedByTerminator(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{"x"},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_CF_PASS), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_IDENTIFIER), 0),
		},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL for dangling PASS, got %s", got.Outcome)
	}
}

func TestValidateRelaxesKeywordAfterPeriod(t *testing.T) {
	rev := testRevision(t)
	// `foo.static` - STATIC here is a member access name, not the
	// declaration keyword, so rule 6 must not apply.
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{"foo"},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_IDENTIFIER), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PERIOD), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_PR_STATIC), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_NEWLINE), 0),
			bufcodec.NewEncodedToken(local(t, rev, token.G_TK_EOF), 0),
		},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != PASS {
		t.Fatalf("expected relaxation to allow STATIC after '.', got %s (%s)", got.Outcome, got.Reason)
	}
}

func TestValidateFailsOnCursorToken(t *testing.T) {
	rev := testRevision(t)
	if !rev.HasToken(token.G_TK_CURSOR) {
		t.Skip("fixture revision lacks CURSOR token")
	}
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Tokens:        []bufcodec.EncodedToken{bufcodec.NewEncodedToken(local(t, rev, token.G_TK_CURSOR), 0)},
	}
	got := ValidateState(state, rev, false)
	if got.Outcome != FAIL {
		t.Fatalf("expected FAIL for CURSOR token, got %s", got.Outcome)
	}
}

func TestValidateCorruptOnDecodeFailure(t *testing.T) {
	rev := testRevision(t)
	codec := bufcodec.New(variant.Default{})
	got := Validate([]byte("not a buffer"), rev, codec, false)
	if got.Outcome != CORRUPT {
		t.Fatalf("expected CORRUPT, got %s", got.Outcome)
	}
}
