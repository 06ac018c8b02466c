// Package reconstruct implements the Source Reconstructor (spec §4.5,
// C5): it walks a decoded ScriptState's token stream and emits
// formatted GDScript source text.
//
// The walk itself — a flat index over a token/instruction array, one
// step at a time, building output into a strings.Builder — is grounded
// on the teacher's Compiler.DiassembleBytecode (compiler/compiler.go),
// adapted from disassembling opcodes into text to reconstructing source
// text from an Encoded Token stream.
package reconstruct

import (
	"strconv"
	"strings"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

const defaultTabSize = 1

// Reconstructor formats a ScriptState back into source text.
type Reconstructor struct{}

// New returns a Reconstructor. It holds no state between calls.
func New() *Reconstructor { return &Reconstructor{} }

// Reconstruct implements the C5 public contract.
func (rc *Reconstructor) Reconstruct(state *bufcodec.ScriptState, rev *revision.Descriptor) (string, error) {
	if len(state.Identifiers) == 0 && len(state.Constants) == 0 && len(state.Tokens) == 0 {
		return "", nil // spec §4.5 "Empty-script policy"
	}

	w := &walker{state: state, rev: rev, currentIndent: 0, prevLine: 1, prevColumnAnchor: 1, prevEmitted: token.G_TK_NEWLINE}

	for i, tok := range state.Tokens {
		gt, ok := rev.GlobalTokenFor(tok.LocalID())
		if !ok {
			return "", gderr.Newf(gderr.InvalidScriptState, "token %d: unknown local id %d", i, tok.LocalID())
		}

		if err := w.checkPayload(i, gt, tok); err != nil {
			return "", err
		}

		line, hasLine := state.Lines[i]
		if !hasLine {
			line = w.prevLine
		}
		if gt != token.G_TK_NEWLINE && gt != token.G_TK_EOF && line > w.prevLine {
			w.emitSyntheticNewline(line, i, rev.IsV2())
		}

		w.formatToken(i, gt, tok)

		if gt == token.G_TK_NEWLINE {
			w.applyNewlineIndent(i, tok, rev)
			w.flushLine()
			w.emitNewline(line)
		}
		w.prevEmitted = gt
	}
	w.flushLine()

	text := w.out.String()
	if rev.IsV2() && text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, nil
}

type walker struct {
	state *bufcodec.ScriptState
	rev   *revision.Descriptor

	out              strings.Builder
	line             strings.Builder
	currentIndent    int
	prevLine         int
	prevColumnAnchor int
	prevEmitted      token.GlobalToken
}

// checkPayload validates table-reference invariants (spec §8 invariant
// 2) before the token is formatted.
func (w *walker) checkPayload(i int, gt token.GlobalToken, tok bufcodec.EncodedToken) error {
	switch gt {
	case token.G_TK_IDENTIFIER:
		if int(tok.Payload()) >= len(w.state.Identifiers) {
			return gderr.Newf(gderr.InvalidScriptState, "token %d: identifier payload %d out of range", i, tok.Payload())
		}
	case token.G_TK_CONSTANT:
		if int(tok.Payload()) >= len(w.state.Constants) {
			return gderr.Newf(gderr.InvalidScriptState, "token %d: constant payload %d out of range", i, tok.Payload())
		}
	case token.G_TK_BUILT_IN_FUNC:
		if int(tok.Payload()) >= len(w.rev.FunctionTable) {
			return gderr.Newf(gderr.InvalidScriptState, "token %d: function payload %d out of range", i, tok.Payload())
		}
	}
	return nil
}

func (w *walker) emitSyntheticNewline(line int, i int, isV2 bool) {
	_, hasLineMapEntry := w.state.Lines[i]
	insertContinuation := w.line.Len() > 0 && (!isV2 || !hasLineMapEntry)

	w.flushIndentedLine()
	delta := line - w.prevLine
	for n := 0; n < delta; n++ {
		if insertContinuation && n < delta-1 {
			w.out.WriteString("\\\n")
		} else {
			w.out.WriteString("\n")
		}
	}
	w.prevLine = line
}

// emitNewline writes the literal newline a NEWLINE token itself stands
// for. Every NEWLINE token in the stream owns one "\n" regardless of
// what (if anything) follows it, so a trailing NEWLINE right before
// EOF still produces output: relying on a following token's line delta
// (emitSyntheticNewline) leaves a script's final newline unwritten,
// since EOF never triggers that check.
func (w *walker) emitNewline(line int) {
	w.out.WriteString("\n")
	next := line + 1
	if next <= w.prevLine {
		next = w.prevLine + 1
	}
	w.prevLine = next
}

func (w *walker) flushIndentedLine() {
	if w.line.Len() == 0 {
		return
	}
	w.out.WriteString(strings.Repeat("\t", w.currentIndent))
	w.out.WriteString(w.line.String())
	w.line.Reset()
}

func (w *walker) flushLine() {
	if w.line.Len() == 0 {
		return
	}
	w.flushIndentedLine()
}

func (w *walker) applyNewlineIndent(i int, tok bufcodec.EncodedToken, rev *revision.Descriptor) {
	if !rev.IsV2() {
		w.currentIndent = int(tok.Payload())
		return
	}
	col, ok := w.state.Columns[i]
	if !ok {
		return
	}
	delta := col - w.prevColumnAnchor
	tabSize := defaultTabSize
	switch {
	case delta == 0:
	case delta > 0:
		if delta >= tabSize {
			w.currentIndent += delta / tabSize
		} else {
			w.currentIndent++
		}
	default:
		abs := -delta
		if abs >= tabSize {
			w.currentIndent -= abs / tabSize
		} else {
			w.currentIndent--
		}
	}
	if w.currentIndent < 0 {
		w.currentIndent = 0
	}
	w.prevColumnAnchor = col
}

// needsSpaceBefore reports whether the builder's current tail does not
// already end in whitespace, so operator formatting doesn't double up
// spaces.
func (w *walker) needsSpaceBefore() bool {
	s := w.line.String()
	return s != "" && !strings.HasSuffix(s, " ")
}

func (w *walker) write(s string) { w.line.WriteString(s) }

var binaryOperatorText = map[token.GlobalToken]string{
	token.G_TK_OP_EQUAL: "==", token.G_TK_OP_NOT_EQUAL: "!=",
	token.G_TK_OP_LESS: "<", token.G_TK_OP_LESS_EQUAL: "<=",
	token.G_TK_OP_GREATER: ">", token.G_TK_OP_GREATER_EQUAL: ">=",
	token.G_TK_OP_AND: "and", token.G_TK_OP_OR: "or", token.G_TK_OP_IN: "in",
	token.G_TK_OP_ADD: "+", token.G_TK_OP_MUL: "*", token.G_TK_OP_DIV: "/",
	token.G_TK_OP_SHIFT_LEFT: "<<", token.G_TK_OP_SHIFT_RIGHT: ">>",
	token.G_TK_OP_ASSIGN: "=", token.G_TK_OP_ASSIGN_ADD: "+=", token.G_TK_OP_ASSIGN_SUB: "-=",
	token.G_TK_OP_ASSIGN_MUL: "*=", token.G_TK_OP_ASSIGN_DIV: "/=", token.G_TK_OP_ASSIGN_MOD: "%=",
	token.G_TK_OP_ASSIGN_SHIFT_LEFT: "<<=", token.G_TK_OP_ASSIGN_SHIFT_RIGHT: ">>=",
	token.G_TK_OP_ASSIGN_BIT_AND: "&=", token.G_TK_OP_ASSIGN_BIT_OR: "|=", token.G_TK_OP_ASSIGN_BIT_XOR: "^=",
	token.G_TK_OP_BIT_AND: "&", token.G_TK_OP_BIT_OR: "|", token.G_TK_OP_BIT_XOR: "^",
	token.G_TK_AMPERSAND_AMPERSAND: "&&", token.G_TK_PIPE_PIPE: "||",
	token.G_TK_STAR_STAR: "**", token.G_TK_STAR_STAR_EQUAL: "**=",
}

var plainKeywordText = map[token.GlobalToken]string{
	token.G_TK_CF_IF: "if", token.G_TK_CF_ELIF: "elif", token.G_TK_CF_ELSE: "else",
	token.G_TK_CF_FOR: "for", token.G_TK_CF_WHILE: "while", token.G_TK_CF_BREAK: "break",
	token.G_TK_CF_CONTINUE: "continue", token.G_TK_CF_PASS: "pass", token.G_TK_CF_RETURN: "return",
	token.G_TK_CF_MATCH: "match", token.G_TK_PR_CLASS: "class", token.G_TK_PR_CLASS_NAME: "class_name",
	token.G_TK_PR_EXTENDS: "extends", token.G_TK_PR_IS: "is", token.G_TK_PR_ONREADY: "onready",
	token.G_TK_PR_TOOL: "tool", token.G_TK_PR_STATIC: "static", token.G_TK_PR_EXPORT: "export",
	token.G_TK_PR_CONST: "const", token.G_TK_PR_AS: "as", token.G_TK_PR_VOID: "void",
	token.G_TK_PR_ENUM: "enum", token.G_TK_PR_PRELOAD: "preload", token.G_TK_PR_ASSERT: "assert",
	token.G_TK_PR_YIELD: "yield", token.G_TK_PR_SIGNAL: "signal", token.G_TK_PR_BREAKPOINT: "breakpoint",
	token.G_TK_PR_AWAIT: "await", token.G_TK_PR_NAMESPACE: "namespace", token.G_TK_PR_SUPER: "super",
	token.G_TK_PR_TRAIT: "trait", token.G_TK_ABSTRACT: "abstract", token.G_TK_SELF: "self",
	token.G_TK_CONST_PI: "PI", token.G_TK_CONST_TAU: "TAU", token.G_TK_CONST_INF: "INF", token.G_TK_CONST_NAN: "NAN",
	token.G_TK_WILDCARD: "_", token.G_TK_OP_NOT: "not",
}

func (w *walker) formatToken(i int, gt token.GlobalToken, tok bufcodec.EncodedToken) {
	switch gt {
	case token.G_TK_NEWLINE:
		return
	case token.G_TK_IDENTIFIER:
		w.write(w.state.Identifiers[tok.Payload()])
		return
	case token.G_TK_CONSTANT:
		w.write(formatConstant(w.state.Constants[tok.Payload()]))
		return
	case token.G_TK_BUILT_IN_FUNC:
		w.write(w.rev.FunctionTable[tok.Payload()])
		return
	case token.G_TK_PR_FUNCTION:
		w.writeSpacedPrefix("func")
		return
	case token.G_TK_PR_VAR:
		if w.prevEmitted != token.G_TK_PR_ONREADY && w.line.Len() > 0 {
			w.write(" ")
		}
		w.write("var ")
		return
	case token.G_TK_PR_SETGET:
		w.write(" setget ")
		return
	case token.G_TK_COMMA:
		w.write(", ")
		return
	case token.G_TK_PERIOD:
		w.write(".")
		return
	case token.G_TK_PERIOD_PERIOD:
		w.write("..")
		return
	case token.G_TK_PERIOD_PERIOD_PERIOD:
		w.write("...")
		return
	case token.G_TK_COLON:
		w.write(":")
		return
	case token.G_TK_SEMICOLON:
		w.write(";")
		return
	case token.G_TK_PARENTHESIS_OPEN:
		w.write("(")
		return
	case token.G_TK_PARENTHESIS_CLOSE:
		w.write(")")
		return
	case token.G_TK_BRACKET_OPEN:
		w.write("[")
		return
	case token.G_TK_BRACKET_CLOSE:
		w.write("]")
		return
	case token.G_TK_CURLY_BRACKET_OPEN:
		w.write("{")
		return
	case token.G_TK_CURLY_BRACKET_CLOSE:
		w.write("}")
		return
	case token.G_TK_QUESTION_MARK:
		w.write("?")
		return
	case token.G_TK_DOLLAR:
		w.write("$")
		return
	case token.G_TK_FORWARD_ARROW:
		w.write(" -> ")
		return
	case token.G_TK_OP_SUB:
		if !token.CanPrecedeBinaryOperator(w.prevEmitted) {
			w.write("-") // unary minus: no trailing space
			return
		}
		w.writeBinary("-")
		return
	case token.G_TK_OP_MOD:
		if w.prevEmitted == token.G_TK_CONSTANT || w.prevEmitted == token.G_TK_IDENTIFIER {
			w.writeBinary("%")
		} else {
			w.write("%")
		}
		return
	case token.G_TK_BANG:
		w.write("!")
		return
	case token.G_TK_OP_BIT_INVERT:
		w.write("~")
		return
	}

	if text, ok := binaryOperatorText[gt]; ok {
		w.writeBinary(text)
		return
	}
	if text, ok := plainKeywordText[gt]; ok {
		w.writeSpacedPrefix(text)
		return
	}
	if name, ok := reservedSpelling(gt); ok {
		w.writeSpacedPrefix(name)
		return
	}
}

func (w *walker) writeBinary(text string) {
	if w.needsSpaceBefore() && w.prevEmitted != token.G_TK_NEWLINE {
		w.write(" ")
	}
	w.write(text)
	w.write(" ")
}

func (w *walker) writeSpacedPrefix(text string) {
	if w.line.Len() > 0 {
		w.write(" ")
	}
	w.write(text)
}

func reservedSpelling(gt token.GlobalToken) (string, bool) {
	for spelling, g := range token.ReservedWords() {
		if g == gt {
			return spelling, true
		}
	}
	return "", false
}

func formatConstant(v variant.Value) string {
	switch v.Kind {
	case variant.KindNil:
		return "null"
	case variant.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case variant.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case variant.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case variant.KindString:
		return "\"" + escapeStringLiteral(v.Str) + "\""
	case variant.KindNodePath:
		return "@\"" + escapeStringLiteral(v.Str) + "\""
	case variant.KindVector2:
		return "Vector2(" + strconv.FormatFloat(v.Vec2[0], 'g', -1, 64) + ", " + strconv.FormatFloat(v.Vec2[1], 'g', -1, 64) + ")"
	case variant.KindVector3:
		return "Vector3(" + strconv.FormatFloat(v.Vec3[0], 'g', -1, 64) + ", " + strconv.FormatFloat(v.Vec3[1], 'g', -1, 64) + ", " + strconv.FormatFloat(v.Vec3[2], 'g', -1, 64) + ")"
	default:
		return ""
	}
}

func escapeStringLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return r.Replace(s)
}
