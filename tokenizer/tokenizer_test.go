package tokenizer

import (
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
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

func collect(s *Stream) []*Record {
	var out []*Record
	for {
		rec := s.Next()
		if rec == nil {
			break
		}
		out = append(out, rec)
		if rec.Global == token.G_TK_EOF {
			break
		}
	}
	return out
}

func globals(records []*Record) []token.GlobalToken {
	out := make([]token.GlobalToken, len(records))
	for i, r := range records {
		out[i] = r.Global
	}
	return out
}

func TestTokenizeSimpleAssignment(t *testing.T) {
	rev := testRevision(t)
	s := New("var speed = 5\n", rev)
	records := collect(s)
	got := globals(records)
	want := []token.GlobalToken{
		token.G_TK_PR_VAR, token.G_TK_IDENTIFIER, token.G_TK_OP_ASSIGN, token.G_TK_CONSTANT,
		token.G_TK_NEWLINE, token.G_TK_EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeKeywordBecomesIdentifierWhenUnsupported(t *testing.T) {
	r := revision.NewRegistry()
	d := &revision.Descriptor{
		CommitID:           1,
		EngineVersionMin:   "1.0.0-stable",
		BytecodeVersion:    5,
		VariantFormatMajor: 1,
		TokenTable: []token.GlobalToken{
			token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_NEWLINE, token.G_TK_EOF,
		},
	}
	if err := r.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s := New("trait\n", d)
	records := collect(s)
	if records[0].Global != token.G_TK_IDENTIFIER {
		t.Errorf("expected 'trait' to lex as IDENTIFIER when revision lacks PR_TRAIT, got %s", records[0].Global)
	}
}

func TestTokenizeDistinctLogicalOperators(t *testing.T) {
	rev := testRevision(t)
	s := New("a && b || c\n", rev)
	records := collect(s)
	got := globals(records)
	if got[1] != token.G_TK_AMPERSAND_AMPERSAND || got[3] != token.G_TK_PIPE_PIPE {
		t.Errorf("expected distinct logical ops, got %v", got)
	}
}

func TestTokenizeUnaryMinusNumber(t *testing.T) {
	rev := testRevision(t)
	s := New("x = -5\n", rev)
	records := collect(s)
	// IDENTIFIER(x) OP_ASSIGN CONSTANT(-5) NEWLINE EOF
	if records[2].Global != token.G_TK_CONSTANT || records[2].Value.Int != -5 {
		t.Errorf("expected absorbed -5 constant, got %+v", records[2])
	}
}

func TestTokenizeBinaryMinusNotAbsorbed(t *testing.T) {
	rev := testRevision(t)
	s := New("x - 5\n", rev)
	records := collect(s)
	got := globals(records)
	if got[1] != token.G_TK_OP_SUB {
		t.Errorf("expected OP_SUB after identifier, got %v", got)
	}
}

func TestLookaheadPeek(t *testing.T) {
	rev := testRevision(t)
	s := New("a b c\n", rev)
	if s.Peek(0).Global != token.G_TK_IDENTIFIER || s.Peek(0).Text != "a" {
		t.Fatalf("Peek(0) = %+v", s.Peek(0))
	}
	if s.Peek(1).Text != "b" || s.Peek(2).Text != "c" {
		t.Fatalf("lookahead mismatch: %+v %+v", s.Peek(1), s.Peek(2))
	}
}

func TestTokenizeString(t *testing.T) {
	rev := testRevision(t)
	s := New(`"hello\nworld"` + "\n", rev)
	records := collect(s)
	if records[0].Global != token.G_TK_CONSTANT || records[0].Value.Str != "hello\nworld" {
		t.Fatalf("got %+v", records[0])
	}
}
