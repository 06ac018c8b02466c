// Package token defines GlobalToken, the closed, monotonically-growing
// enumeration of every token kind that has ever existed across GDScript
// bytecode revisions.
//
// The numeric ordering of this enumeration is part of the public
// interface: external serializations and revision registrations depend
// on the exact integer value of each entry, so new entries are always
// appended before G_TK_MAX and existing ones are never renumbered.
package token

import "fmt"

// GlobalToken is a cross-revision canonical token kind. A revision's
// local token table (see package revision) maps a revision-local 8-bit
// id onto one of these values.
type GlobalToken int

const (
	G_TK_EMPTY GlobalToken = iota
	G_TK_IDENTIFIER
	G_TK_CONSTANT
	G_TK_SELF
	G_TK_BUILT_IN_TYPE
	G_TK_BUILT_IN_FUNC
	G_TK_OP_IN
	G_TK_OP_EQUAL
	G_TK_OP_NOT_EQUAL
	G_TK_OP_LESS
	G_TK_OP_LESS_EQUAL
	G_TK_OP_GREATER
	G_TK_OP_GREATER_EQUAL
	G_TK_OP_AND
	G_TK_OP_OR
	G_TK_OP_NOT
	G_TK_OP_ADD
	G_TK_OP_SUB
	G_TK_OP_MUL
	G_TK_OP_DIV
	G_TK_OP_MOD
	G_TK_OP_SHIFT_LEFT
	G_TK_OP_SHIFT_RIGHT
	G_TK_OP_ASSIGN
	G_TK_OP_ASSIGN_ADD
	G_TK_OP_ASSIGN_SUB
	G_TK_OP_ASSIGN_MUL
	G_TK_OP_ASSIGN_DIV
	G_TK_OP_ASSIGN_MOD
	G_TK_OP_ASSIGN_SHIFT_LEFT
	G_TK_OP_ASSIGN_SHIFT_RIGHT
	G_TK_OP_ASSIGN_BIT_AND
	G_TK_OP_ASSIGN_BIT_OR
	G_TK_OP_ASSIGN_BIT_XOR
	G_TK_OP_BIT_AND
	G_TK_OP_BIT_OR
	G_TK_OP_BIT_XOR
	G_TK_OP_BIT_INVERT
	G_TK_CF_IF
	G_TK_CF_ELIF
	G_TK_CF_ELSE
	G_TK_CF_FOR
	G_TK_CF_WHILE
	G_TK_CF_BREAK
	G_TK_CF_CONTINUE
	G_TK_CF_PASS
	G_TK_CF_RETURN
	G_TK_CF_MATCH
	G_TK_PR_FUNCTION
	G_TK_PR_CLASS
	G_TK_PR_CLASS_NAME
	G_TK_PR_EXTENDS
	G_TK_PR_IS
	G_TK_PR_ONREADY
	G_TK_PR_TOOL
	G_TK_PR_STATIC
	G_TK_PR_EXPORT
	G_TK_PR_SETGET
	G_TK_PR_CONST
	G_TK_PR_VAR
	G_TK_PR_AS
	G_TK_PR_VOID
	G_TK_PR_ENUM
	G_TK_PR_PRELOAD
	G_TK_PR_ASSERT
	G_TK_PR_YIELD
	G_TK_PR_SIGNAL
	G_TK_PR_BREAKPOINT
	G_TK_PR_REMOTE
	G_TK_PR_SYNC
	G_TK_PR_MASTER
	G_TK_PR_SLAVE
	G_TK_PR_PUPPET
	G_TK_PR_REMOTESYNC
	G_TK_PR_MASTERSYNC
	G_TK_PR_PUPPETSYNC
	G_TK_BRACKET_OPEN
	G_TK_BRACKET_CLOSE
	G_TK_CURLY_BRACKET_OPEN
	G_TK_CURLY_BRACKET_CLOSE
	G_TK_PARENTHESIS_OPEN
	G_TK_PARENTHESIS_CLOSE
	G_TK_COMMA
	G_TK_SEMICOLON
	G_TK_PERIOD
	G_TK_QUESTION_MARK
	G_TK_COLON
	G_TK_DOLLAR
	G_TK_FORWARD_ARROW
	G_TK_NEWLINE
	G_TK_CONST_PI
	G_TK_CONST_TAU
	G_TK_WILDCARD
	G_TK_CONST_INF
	G_TK_CONST_NAN
	G_TK_ERROR
	G_TK_EOF
	G_TK_CURSOR
	G_TK_PR_SLAVESYNC
	G_TK_CF_DO
	G_TK_CF_CASE
	G_TK_CF_SWITCH
	G_TK_ANNOTATION
	G_TK_AMPERSAND_AMPERSAND
	G_TK_PIPE_PIPE
	G_TK_BANG
	G_TK_STAR_STAR
	G_TK_STAR_STAR_EQUAL
	G_TK_CF_WHEN
	G_TK_PR_AWAIT
	G_TK_PR_NAMESPACE
	G_TK_PR_SUPER
	G_TK_PR_TRAIT
	G_TK_PERIOD_PERIOD
	G_TK_UNDERSCORE
	G_TK_INDENT
	G_TK_DEDENT
	G_TK_VCS_CONFLICT_MARKER
	G_TK_BACKTICK
	G_TK_ABSTRACT
	G_TK_PERIOD_PERIOD_PERIOD
	G_TK_MAX
)

var names = map[GlobalToken]string{
	G_TK_EMPTY:                 "EMPTY",
	G_TK_IDENTIFIER:            "IDENTIFIER",
	G_TK_CONSTANT:              "CONSTANT",
	G_TK_SELF:                  "SELF",
	G_TK_BUILT_IN_TYPE:         "BUILT_IN_TYPE",
	G_TK_BUILT_IN_FUNC:         "BUILT_IN_FUNC",
	G_TK_OP_IN:                 "OP_IN",
	G_TK_OP_EQUAL:              "OP_EQUAL",
	G_TK_OP_NOT_EQUAL:          "OP_NOT_EQUAL",
	G_TK_OP_LESS:               "OP_LESS",
	G_TK_OP_LESS_EQUAL:         "OP_LESS_EQUAL",
	G_TK_OP_GREATER:            "OP_GREATER",
	G_TK_OP_GREATER_EQUAL:      "OP_GREATER_EQUAL",
	G_TK_OP_AND:                "OP_AND",
	G_TK_OP_OR:                 "OP_OR",
	G_TK_OP_NOT:                "OP_NOT",
	G_TK_OP_ADD:                "OP_ADD",
	G_TK_OP_SUB:                "OP_SUB",
	G_TK_OP_MUL:                "OP_MUL",
	G_TK_OP_DIV:                "OP_DIV",
	G_TK_OP_MOD:                "OP_MOD",
	G_TK_OP_SHIFT_LEFT:         "OP_SHIFT_LEFT",
	G_TK_OP_SHIFT_RIGHT:        "OP_SHIFT_RIGHT",
	G_TK_OP_ASSIGN:             "OP_ASSIGN",
	G_TK_OP_ASSIGN_ADD:         "OP_ASSIGN_ADD",
	G_TK_OP_ASSIGN_SUB:         "OP_ASSIGN_SUB",
	G_TK_OP_ASSIGN_MUL:         "OP_ASSIGN_MUL",
	G_TK_OP_ASSIGN_DIV:         "OP_ASSIGN_DIV",
	G_TK_OP_ASSIGN_MOD:         "OP_ASSIGN_MOD",
	G_TK_OP_ASSIGN_SHIFT_LEFT:  "OP_ASSIGN_SHIFT_LEFT",
	G_TK_OP_ASSIGN_SHIFT_RIGHT: "OP_ASSIGN_SHIFT_RIGHT",
	G_TK_OP_ASSIGN_BIT_AND:     "OP_ASSIGN_BIT_AND",
	G_TK_OP_ASSIGN_BIT_OR:      "OP_ASSIGN_BIT_OR",
	G_TK_OP_ASSIGN_BIT_XOR:     "OP_ASSIGN_BIT_XOR",
	G_TK_OP_BIT_AND:            "OP_BIT_AND",
	G_TK_OP_BIT_OR:             "OP_BIT_OR",
	G_TK_OP_BIT_XOR:            "OP_BIT_XOR",
	G_TK_OP_BIT_INVERT:         "OP_BIT_INVERT",
	G_TK_CF_IF:                 "CF_IF",
	G_TK_CF_ELIF:               "CF_ELIF",
	G_TK_CF_ELSE:               "CF_ELSE",
	G_TK_CF_FOR:                "CF_FOR",
	G_TK_CF_WHILE:              "CF_WHILE",
	G_TK_CF_BREAK:              "CF_BREAK",
	G_TK_CF_CONTINUE:           "CF_CONTINUE",
	G_TK_CF_PASS:               "CF_PASS",
	G_TK_CF_RETURN:             "CF_RETURN",
	G_TK_CF_MATCH:              "CF_MATCH",
	G_TK_PR_FUNCTION:           "PR_FUNCTION",
	G_TK_PR_CLASS:              "PR_CLASS",
	G_TK_PR_CLASS_NAME:         "PR_CLASS_NAME",
	G_TK_PR_EXTENDS:            "PR_EXTENDS",
	G_TK_PR_IS:                 "PR_IS",
	G_TK_PR_ONREADY:            "PR_ONREADY",
	G_TK_PR_TOOL:               "PR_TOOL",
	G_TK_PR_STATIC:             "PR_STATIC",
	G_TK_PR_EXPORT:             "PR_EXPORT",
	G_TK_PR_SETGET:             "PR_SETGET",
	G_TK_PR_CONST:              "PR_CONST",
	G_TK_PR_VAR:                "PR_VAR",
	G_TK_PR_AS:                 "PR_AS",
	G_TK_PR_VOID:               "PR_VOID",
	G_TK_PR_ENUM:               "PR_ENUM",
	G_TK_PR_PRELOAD:            "PR_PRELOAD",
	G_TK_PR_ASSERT:             "PR_ASSERT",
	G_TK_PR_YIELD:              "PR_YIELD",
	G_TK_PR_SIGNAL:             "PR_SIGNAL",
	G_TK_PR_BREAKPOINT:         "PR_BREAKPOINT",
	G_TK_PR_REMOTE:             "PR_REMOTE",
	G_TK_PR_SYNC:               "PR_SYNC",
	G_TK_PR_MASTER:             "PR_MASTER",
	G_TK_PR_SLAVE:              "PR_SLAVE",
	G_TK_PR_PUPPET:             "PR_PUPPET",
	G_TK_PR_REMOTESYNC:         "PR_REMOTESYNC",
	G_TK_PR_MASTERSYNC:         "PR_MASTERSYNC",
	G_TK_PR_PUPPETSYNC:         "PR_PUPPETSYNC",
	G_TK_BRACKET_OPEN:          "BRACKET_OPEN",
	G_TK_BRACKET_CLOSE:         "BRACKET_CLOSE",
	G_TK_CURLY_BRACKET_OPEN:    "CURLY_BRACKET_OPEN",
	G_TK_CURLY_BRACKET_CLOSE:   "CURLY_BRACKET_CLOSE",
	G_TK_PARENTHESIS_OPEN:      "PARENTHESIS_OPEN",
	G_TK_PARENTHESIS_CLOSE:     "PARENTHESIS_CLOSE",
	G_TK_COMMA:                 "COMMA",
	G_TK_SEMICOLON:             "SEMICOLON",
	G_TK_PERIOD:                "PERIOD",
	G_TK_QUESTION_MARK:         "QUESTION_MARK",
	G_TK_COLON:                 "COLON",
	G_TK_DOLLAR:                "DOLLAR",
	G_TK_FORWARD_ARROW:         "FORWARD_ARROW",
	G_TK_NEWLINE:               "NEWLINE",
	G_TK_CONST_PI:              "CONST_PI",
	G_TK_CONST_TAU:             "CONST_TAU",
	G_TK_WILDCARD:              "WILDCARD",
	G_TK_CONST_INF:             "CONST_INF",
	G_TK_CONST_NAN:             "CONST_NAN",
	G_TK_ERROR:                 "ERROR",
	G_TK_EOF:                   "EOF",
	G_TK_CURSOR:                "CURSOR",
	G_TK_PR_SLAVESYNC:          "PR_SLAVESYNC",
	G_TK_CF_DO:                 "CF_DO",
	G_TK_CF_CASE:               "CF_CASE",
	G_TK_CF_SWITCH:             "CF_SWITCH",
	G_TK_ANNOTATION:            "ANNOTATION",
	G_TK_AMPERSAND_AMPERSAND:   "AMPERSAND_AMPERSAND",
	G_TK_PIPE_PIPE:             "PIPE_PIPE",
	G_TK_BANG:                  "BANG",
	G_TK_STAR_STAR:             "STAR_STAR",
	G_TK_STAR_STAR_EQUAL:       "STAR_STAR_EQUAL",
	G_TK_CF_WHEN:               "CF_WHEN",
	G_TK_PR_AWAIT:              "PR_AWAIT",
	G_TK_PR_NAMESPACE:          "PR_NAMESPACE",
	G_TK_PR_SUPER:              "PR_SUPER",
	G_TK_PR_TRAIT:              "PR_TRAIT",
	G_TK_PERIOD_PERIOD:         "PERIOD_PERIOD",
	G_TK_UNDERSCORE:            "UNDERSCORE",
	G_TK_INDENT:                "INDENT",
	G_TK_DEDENT:                "DEDENT",
	G_TK_VCS_CONFLICT_MARKER:   "VCS_CONFLICT_MARKER",
	G_TK_BACKTICK:              "BACKTICK",
	G_TK_ABSTRACT:              "ABSTRACT",
	G_TK_PERIOD_PERIOD_PERIOD:  "PERIOD_PERIOD_PERIOD",
	G_TK_MAX:                   "MAX",
}

// String returns the canonical name of a global token, e.g. "CF_IF".
// Unknown values are rendered as their raw integer so that malformed
// buffers still produce a readable diagnostic instead of panicking.
func (g GlobalToken) String() string {
	if name, ok := names[g]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(g))
}

// reservedWords maps every keyword spelling that has ever existed in the
// language to its GlobalToken. A revision's effective reserved set is
// the subset of these whose token is present in its RevisionDescriptor's
// token table (see revision.Descriptor.HasToken) — the keyword list
// itself never changes across revisions, only which entries a given
// revision recognizes.
var reservedWords = map[string]GlobalToken{
	"if":         G_TK_CF_IF,
	"elif":       G_TK_CF_ELIF,
	"else":       G_TK_CF_ELSE,
	"for":        G_TK_CF_FOR,
	"while":      G_TK_CF_WHILE,
	"break":      G_TK_CF_BREAK,
	"continue":   G_TK_CF_CONTINUE,
	"pass":       G_TK_CF_PASS,
	"return":     G_TK_CF_RETURN,
	"match":      G_TK_CF_MATCH,
	"when":       G_TK_CF_WHEN,
	"do":         G_TK_CF_DO,
	"case":       G_TK_CF_CASE,
	"switch":     G_TK_CF_SWITCH,
	"func":       G_TK_PR_FUNCTION,
	"class":      G_TK_PR_CLASS,
	"class_name": G_TK_PR_CLASS_NAME,
	"extends":    G_TK_PR_EXTENDS,
	"is":         G_TK_PR_IS,
	"onready":    G_TK_PR_ONREADY,
	"tool":       G_TK_PR_TOOL,
	"static":     G_TK_PR_STATIC,
	"export":     G_TK_PR_EXPORT,
	"setget":     G_TK_PR_SETGET,
	"const":      G_TK_PR_CONST,
	"var":        G_TK_PR_VAR,
	"as":         G_TK_PR_AS,
	"void":       G_TK_PR_VOID,
	"enum":       G_TK_PR_ENUM,
	"preload":    G_TK_PR_PRELOAD,
	"assert":     G_TK_PR_ASSERT,
	"yield":      G_TK_PR_YIELD,
	"signal":     G_TK_PR_SIGNAL,
	"breakpoint": G_TK_PR_BREAKPOINT,
	"remote":     G_TK_PR_REMOTE,
	"sync":       G_TK_PR_SYNC,
	"master":     G_TK_PR_MASTER,
	"slave":      G_TK_PR_SLAVE,
	"puppet":     G_TK_PR_PUPPET,
	"remotesync": G_TK_PR_REMOTESYNC,
	"mastersync": G_TK_PR_MASTERSYNC,
	"puppetsync": G_TK_PR_PUPPETSYNC,
	"slavesync":  G_TK_PR_SLAVESYNC,
	"await":      G_TK_PR_AWAIT,
	"namespace":  G_TK_PR_NAMESPACE,
	"super":      G_TK_PR_SUPER,
	"trait":      G_TK_PR_TRAIT,
	"abstract":   G_TK_ABSTRACT,
	"and":        G_TK_OP_AND,
	"or":         G_TK_OP_OR,
	"not":        G_TK_OP_NOT,
	"in":         G_TK_OP_IN,
	"self":       G_TK_SELF,
	"PI":         G_TK_CONST_PI,
	"TAU":        G_TK_CONST_TAU,
	"INF":        G_TK_CONST_INF,
	"NAN":        G_TK_CONST_NAN,
}

// ReservedWords returns the fixed, cross-revision keyword table. Callers
// consult a RevisionDescriptor to know which of these a given revision
// actually recognizes.
func ReservedWords() map[string]GlobalToken {
	return reservedWords
}

// FromName resolves a GlobalToken by its canonical name (the same
// spelling String returns for a known token), e.g. "CF_IF". Used by
// revision registration formats that name tokens instead of encoding
// their numeric value.
func FromName(name string) (GlobalToken, bool) {
	g, ok := byName[name]
	return g, ok
}

var byName = func() map[string]GlobalToken {
	m := make(map[string]GlobalToken, len(names))
	for g, n := range names {
		m[n] = g
	}
	return m
}()

// CanPrecedeBinaryOperator reports whether a token of this kind, once
// emitted, means a following '-' should be parsed as a binary minus
// rather than absorbed into a unary-minus/numeric-literal.
func CanPrecedeBinaryOperator(g GlobalToken) bool {
	switch g {
	case G_TK_IDENTIFIER, G_TK_CONSTANT, G_TK_SELF,
		G_TK_BRACKET_CLOSE, G_TK_CURLY_BRACKET_CLOSE, G_TK_PARENTHESIS_CLOSE,
		G_TK_CONST_PI, G_TK_CONST_TAU, G_TK_CONST_INF, G_TK_CONST_NAN:
		return true
	default:
		return false
	}
}
