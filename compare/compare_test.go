package compare

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

func buildState(rev *revision.Descriptor, identifiers []string, tokens []token.GlobalToken) *bufcodec.ScriptState {
	encoded := make([]bufcodec.EncodedToken, len(tokens))
	for i, gt := range tokens {
		id, _ := rev.LocalTokenFor(gt)
		encoded[i] = bufcodec.NewEncodedToken(id, 0)
	}
	return &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   identifiers,
		Tokens:        encoded,
		Lines:         map[int]int{},
		EndLines:      map[int]int{},
		Columns:       map[int]int{},
	}
}

func TestCompareIdenticalBuffers(t *testing.T) {
	rev := testRevision(t)
	codec := bufcodec.New(variant.Default{})
	state := buildState(rev, []string{"x"}, []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_EOF})

	data, err := codec.Encode(state, rev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	report, err := Compare(data, data, rev, codec)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !report.Equal() {
		t.Fatalf("expected identical report, got %+v (%s)", report, report.Summary)
	}
}

func TestCompareDetectsTokenDivergence(t *testing.T) {
	rev := testRevision(t)
	codec := bufcodec.New(variant.Default{})
	a := buildState(rev, []string{"x"}, []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_EOF})
	b := buildState(rev, []string{"x"}, []token.GlobalToken{token.G_TK_SELF, token.G_TK_EOF})

	dataA, _ := codec.Encode(a, rev)
	dataB, _ := codec.Encode(b, rev)
	report, err := Compare(dataA, dataB, rev, codec)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if report.Equal() {
		t.Fatal("expected divergence to be detected")
	}
	if report.TokenDiff != 0 {
		t.Fatalf("expected token divergence at index 0, got %d", report.TokenDiff)
	}
	if report.FirstTokenDiff == nil || report.FirstTokenDiff.GlobalA != token.G_TK_IDENTIFIER || report.FirstTokenDiff.GlobalB != token.G_TK_SELF {
		t.Fatalf("unexpected first token divergence: %+v", report.FirstTokenDiff)
	}
}

func TestCompareDetectsIdentifierDivergence(t *testing.T) {
	rev := testRevision(t)
	codec := bufcodec.New(variant.Default{})
	a := buildState(rev, []string{"speed"}, []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_EOF})
	b := buildState(rev, []string{"velocity"}, []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_EOF})

	dataA, _ := codec.Encode(a, rev)
	dataB, _ := codec.Encode(b, rev)
	report, err := Compare(dataA, dataB, rev, codec)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if report.IdentifierDiff != 0 {
		t.Fatalf("expected identifier divergence at index 0, got %d", report.IdentifierDiff)
	}
}
