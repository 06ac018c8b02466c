package reconstruct

import (
	"strings"
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

func testRevision(t *testing.T) *revision.Descriptor {
	t.Helper()
	r := revision.Default()
	d, ok := r.FindByCommit(0xed51bd6)
	if !ok {
		t.Fatal("missing test fixture revision")
	}
	return d
}

func localToken(t *testing.T, rev *revision.Descriptor, gt token.GlobalToken) int {
	t.Helper()
	id, ok := rev.LocalTokenFor(gt)
	if !ok {
		t.Fatalf("revision lacks token %s", gt)
	}
	return id
}

func TestReconstructVarAssignment(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{"speed"},
		Constants:     []variant.Value{variant.Int(5)},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_PR_VAR), 0),
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_IDENTIFIER), 0),
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_OP_ASSIGN), 0),
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_CONSTANT), 0),
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_NEWLINE), 0),
		},
		Lines:    map[int]int{},
		EndLines: map[int]int{},
		Columns:  map[int]int{},
	}

	rc := New()
	text, err := rc.Reconstruct(state, rev)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	want := "var speed = 5\n"
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
}

func TestReconstructEmptyScript(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{FormatVersion: rev.BytecodeVersion, Lines: map[int]int{}, EndLines: map[int]int{}, Columns: map[int]int{}}
	rc := New()
	text, err := rc.Reconstruct(state, rev)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestReconstructRejectsOutOfRangeIdentifier(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_IDENTIFIER), 3),
		},
		Lines: map[int]int{}, EndLines: map[int]int{}, Columns: map[int]int{},
	}
	rc := New()
	if _, err := rc.Reconstruct(state, rev); err == nil {
		t.Fatal("expected InvalidScriptState error for out-of-range identifier")
	}
}

func TestReconstructTrailingNewlineForV2(t *testing.T) {
	rev := testRevision(t)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(localToken(t, rev, token.G_TK_CF_PASS), 0),
		},
		Identifiers: []string{"x"}, // non-empty so empty-script policy doesn't short-circuit
		Lines:       map[int]int{}, EndLines: map[int]int{}, Columns: map[int]int{},
	}
	rc := New()
	text, err := rc.Reconstruct(state, rev)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("expected trailing newline for v2 format, got %q", text)
	}
}
