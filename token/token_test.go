package token

import "testing"

func TestStringKnownAndUnknown(t *testing.T) {
	tests := []struct {
		name string
		tok  GlobalToken
		want string
	}{
		{"if", G_TK_CF_IF, "CF_IF"},
		{"identifier", G_TK_IDENTIFIER, "IDENTIFIER"},
		{"max sentinel", G_TK_MAX, "MAX"},
		{"out of range", GlobalToken(99999), "UNKNOWN(99999)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("GlobalToken(%d).String() = %q, want %q", int(tt.tok), got, tt.want)
			}
		})
	}
}

func TestReservedWordsContainsCoreKeywords(t *testing.T) {
	words := ReservedWords()
	for _, kw := range []string{"if", "func", "var", "const", "return", "self"} {
		if _, ok := words[kw]; !ok {
			t.Errorf("ReservedWords() missing keyword %q", kw)
		}
	}
}

func TestCanPrecedeBinaryOperator(t *testing.T) {
	tests := []struct {
		tok  GlobalToken
		want bool
	}{
		{G_TK_IDENTIFIER, true},
		{G_TK_CONSTANT, true},
		{G_TK_PARENTHESIS_CLOSE, true},
		{G_TK_NEWLINE, false},
		{G_TK_OP_ADD, false},
		{G_TK_PR_VAR, false},
	}
	for _, tt := range tests {
		if got := CanPrecedeBinaryOperator(tt.tok); got != tt.want {
			t.Errorf("CanPrecedeBinaryOperator(%s) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}
