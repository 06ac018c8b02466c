// Package tokenizer implements the Text Tokenizer (spec §4.4, C4): a
// version-aware lexical scanner that turns GDScript source text into a
// stream of global tokens.
//
// The scanning loop (character buffer, position/readPosition/column
// bookkeeping, peek/peekNext, handleNumber/handleIdentifier/handleComment)
// is grounded on the teacher's lexer.Lexer (lexer/lexer.go), generalized
// from a fixed Nilan token set to a RevisionDescriptor-parameterized
// GDScript token set, and turned into a lazy, pull-based stream instead
// of an eager Scan-everything-at-once pass so it can support the 4-entry
// lookahead ring buffer spec §4.4 requires.
package tokenizer

import (
	"strconv"
	"strings"

	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

// Record is one yielded element of a TokenStream (spec §4.4 public
// contract).
type Record struct {
	Global    token.GlobalToken
	Text      string        // identifier text, or the raw lexeme for diagnostics
	Value     variant.Value // CONSTANT payload
	Line      int
	Column    int
	Indent    int // NEWLINE: space-indent count
	TabIndent int // NEWLINE: tab-indent count
	Error     string
}

const lookaheadSize = 4

// Stream lazily scans source text into Records, one at a time, under a
// chosen revision. It is not safe for concurrent use and cannot be
// restarted (spec §4.4: "Lazy, finite, non-restartable").
type Stream struct {
	src []rune
	pos int // index of the next unread rune

	rev *revision.Descriptor

	line   int
	column int

	// prevScanned is the last token produced by scanOne, tracked
	// independently of how far the consumer has drained the lookahead
	// ring buffer, since the operator-precedes rule depends on
	// scan order, not consumption order (spec §4.4 "Operator-precedes
	// rules").
	prevScanned token.GlobalToken
	atLineStart bool
	done        bool
	ring        [lookaheadSize]*Record
}

// New begins tokenizing source under rev.
func New(source string, rev *revision.Descriptor) *Stream {
	s := &Stream{
		src:         []rune(source),
		rev:         rev,
		line:        1,
		column:      1,
		prevScanned: token.G_TK_NEWLINE,
		atLineStart: true,
	}
	s.fill()
	return s
}

// Peek returns the record n positions ahead (0 is the next record to be
// returned by Next) without consuming it. n must be < 4.
func (s *Stream) Peek(n int) *Record {
	if n < 0 || n >= lookaheadSize {
		return nil
	}
	return s.ring[n]
}

// Next consumes and returns the next record, refilling the lookahead
// ring buffer. Returns nil once the stream is exhausted past EOF.
func (s *Stream) Next() *Record {
	rec := s.ring[0]
	if rec == nil {
		return nil
	}
	copy(s.ring[0:], s.ring[1:])
	s.ring[lookaheadSize-1] = nil
	s.fill()
	return rec
}

func (s *Stream) fill() {
	for i := 0; i < lookaheadSize; i++ {
		if s.ring[i] != nil {
			continue
		}
		if s.done {
			break
		}
		s.ring[i] = s.scanOne()
		if s.ring[i] != nil {
			s.prevScanned = s.ring[i].Global
			if s.ring[i].Global == token.G_TK_EOF {
				s.done = true
			}
		}
	}
}

func (s *Stream) peekRune() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *Stream) peekRuneAt(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *Stream) advance() rune {
	r := s.peekRune()
	if r == 0 {
		return 0
	}
	s.pos++
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanOne scans exactly one Record, handling leading-indentation
// bookkeeping at the start of a logical line (spec §4.4 "Whitespace").
func (s *Stream) scanOne() *Record {
	if s.atLineStart {
		return s.scanIndentAndNext()
	}
	return s.scanAfterIndent(false)
}

// scanIndentAndNext consumes leading spaces/tabs, producing an error
// record for revisions >= 3.2.0-stable if spaces precede tabs, then
// scans the first real token of the line.
func (s *Stream) scanIndentAndNext() *Record {
	line, col := s.line, s.column
	spaces, tabs := 0, 0
	sawSpaceBeforeTab := false
	for {
		switch s.peekRune() {
		case ' ':
			spaces++
			s.advance()
		case '\t':
			tabs++
			if spaces > 0 {
				sawSpaceBeforeTab = true
			}
			s.advance()
		default:
			goto doneIndent
		}
	}
doneIndent:
	s.atLineStart = false
	if sawSpaceBeforeTab && s.rev.Flags.Has(revision.FlagMixedIndentIsError) {
		return &Record{Global: token.G_TK_ERROR, Line: line, Column: col,
			Error: "Spaces used before tabs in indentation prefix"}
	}
	rec := s.scanAfterIndent(true)
	if rec != nil {
		rec.Indent = spaces
		rec.TabIndent = tabs
	}
	return rec
}

func (s *Stream) skipHorizontalWhitespace() {
	for s.peekRune() == ' ' || s.peekRune() == '\t' || s.peekRune() == '\r' {
		s.advance()
	}
}

// scanAfterIndent scans the next token once any leading indentation
// has already been consumed. firstOfLine indicates this is the first
// token of a new logical line (so NEWLINE indent payloads have already
// been captured by the caller).
func (s *Stream) scanAfterIndent(firstOfLine bool) *Record {
	s.skipHorizontalWhitespace()
	line, col := s.line, s.column
	r := s.peekRune()

	if r == 0 {
		return &Record{Global: token.G_TK_EOF, Line: line, Column: col}
	}
	if r == '\n' {
		s.advance()
		s.atLineStart = true
		return &Record{Global: token.G_TK_NEWLINE, Line: line, Column: col}
	}
	if r == '#' {
		s.scanComment()
		return s.scanAfterIndent(firstOfLine)
	}
	if isIdentStart(r) {
		return s.scanIdentifierOrKeyword(line, col)
	}
	if isDigit(r) || (r == '.' && isDigit(s.peekRuneAt(1))) {
		return s.scanNumber(line, col)
	}
	if r == '-' && isDigit(s.peekRuneAt(1)) && !token.CanPrecedeBinaryOperator(s.prevScanned) {
		s.advance()
		rec := s.scanNumber(line, col)
		rec.Column = col
		if rec.Global == token.G_TK_CONSTANT {
			rec.Value = negate(rec.Value)
			rec.Text = "-" + rec.Text
		}
		return rec
	}
	if r == '\'' || r == '"' {
		return s.scanString(line, col, false)
	}
	if r == '@' && (s.peekRuneAt(1) == '"' || s.peekRuneAt(1) == '\'') {
		s.advance()
		return s.scanString(line, col, true)
	}
	return s.scanOperatorOrPunctuation(line, col)
}

func (s *Stream) scanComment() {
	for s.peekRune() != 0 && s.peekRune() != '\n' {
		s.advance()
	}
}

func (s *Stream) scanIdentifierOrKeyword(line, col int) *Record {
	start := s.pos
	for isIdentCont(s.peekRune()) {
		s.advance()
	}
	text := string(s.src[start:s.pos])

	if gt, ok := token.ReservedWords()[text]; ok && s.rev.HasToken(gt) {
		return &Record{Global: gt, Text: text, Line: line, Column: col}
	}
	return &Record{Global: token.G_TK_IDENTIFIER, Text: text, Line: line, Column: col}
}

func (s *Stream) scanNumber(line, col int) *Record {
	start := s.pos
	allowUnderscore := s.rev.Flags.Has(revision.FlagUnderscoreDigitSeparators)
	allowBinary := s.rev.Flags.Has(revision.FlagBinaryLiterals)

	isFloat := false
	switch {
	case s.peekRune() == '0' && (s.peekRuneAt(1) == 'x' || s.peekRuneAt(1) == 'X'):
		s.advance()
		s.advance()
		for isHexDigit(s.peekRune()) || (allowUnderscore && s.peekRune() == '_') {
			s.advance()
		}
	case allowBinary && s.peekRune() == '0' && (s.peekRuneAt(1) == 'b' || s.peekRuneAt(1) == 'B'):
		s.advance()
		s.advance()
		for s.peekRune() == '0' || s.peekRune() == '1' || (allowUnderscore && s.peekRune() == '_') {
			s.advance()
		}
	default:
		for isDigit(s.peekRune()) || (allowUnderscore && s.peekRune() == '_') {
			s.advance()
		}
		if s.peekRune() == '.' && isDigit(s.peekRuneAt(1)) {
			isFloat = true
			s.advance()
			for isDigit(s.peekRune()) || (allowUnderscore && s.peekRune() == '_') {
				s.advance()
			}
		}
		if s.peekRune() == 'e' || s.peekRune() == 'E' {
			save := s.pos
			s.advance()
			if s.peekRune() == '+' || s.peekRune() == '-' {
				s.advance()
			}
			if isDigit(s.peekRune()) {
				isFloat = true
				for isDigit(s.peekRune()) {
					s.advance()
				}
			} else {
				s.pos = save
			}
		}
	}

	raw := string(s.src[start:s.pos])
	clean := strings.ReplaceAll(raw, "_", "")

	var value variant.Value
	if isFloat {
		f, _ := strconv.ParseFloat(clean, 64)
		value = variant.Float(f)
	} else {
		base := 10
		parse := clean
		switch {
		case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
			base = 16
			parse = clean[2:]
		case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
			base = 2
			parse = clean[2:]
		}
		i, _ := strconv.ParseInt(parse, base, 64)
		value = variant.Int(i)
	}
	return &Record{Global: token.G_TK_CONSTANT, Text: raw, Value: value, Line: line, Column: col}
}

// scanString handles single-quoted, double-quoted, triple-double-quoted
// multi-line strings, and (when nodePath is set) @"..."/@'...' node-path
// literals (spec §4.4 "Strings", "Node-path literals").
func (s *Stream) scanString(line, col int, nodePath bool) *Record {
	quote := s.advance()
	triple := false
	if quote == '"' && s.peekRune() == '"' && s.peekRuneAt(1) == '"' {
		triple = true
		s.advance()
		s.advance()
	}

	var b strings.Builder
	for {
		r := s.peekRune()
		if r == 0 {
			return &Record{Global: token.G_TK_ERROR, Line: line, Column: col, Error: "unterminated string literal"}
		}
		if r == '\\' {
			s.advance()
			esc := s.advance()
			if esc == '\n' {
				continue // line continuation: newline is consumed, not emitted
			}
			decoded, ok := decodeEscape(esc, s)
			if !ok {
				return &Record{Global: token.G_TK_ERROR, Line: line, Column: col, Error: "invalid escape sequence"}
			}
			b.WriteRune(decoded)
			continue
		}
		if r == '\n' {
			if !triple {
				return &Record{Global: token.G_TK_ERROR, Line: line, Column: col, Error: "unterminated string literal"}
			}
			s.advance() // line counter already advanced by advance()
			b.WriteRune('\n')
			continue
		}
		if r == quote {
			if !triple {
				s.advance()
				break
			}
			if s.peekRuneAt(1) == quote && s.peekRuneAt(2) == quote {
				s.advance()
				s.advance()
				s.advance()
				break
			}
			b.WriteRune(s.advance())
			continue
		}
		b.WriteRune(s.advance())
	}

	if nodePath {
		return &Record{Global: token.G_TK_CONSTANT, Text: b.String(), Value: variant.NodePath(b.String()), Line: line, Column: col}
	}
	return &Record{Global: token.G_TK_CONSTANT, Text: b.String(), Value: variant.String(b.String()), Line: line, Column: col}
}

func decodeEscape(esc rune, s *Stream) (rune, bool) {
	switch esc {
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'v':
		return '\v', true
	case 'f':
		return '\f', true
	case 'r':
		return '\r', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '/':
		return '/', true
	case 'u':
		var v rune
		for i := 0; i < 4; i++ {
			c := s.advance()
			if !isHexDigit(c) {
				return 0, false
			}
			v = v*16 + hexVal(c)
		}
		return v, true
	default:
		return 0, false
	}
}

// negate flips the sign of a numeric CONSTANT payload absorbed from a
// leading '-' (spec §4.4: "A leading '-' may be part of the literal
// only when the previous emitted token cannot precede a binary
// operator").
func negate(v variant.Value) variant.Value {
	switch v.Kind {
	case variant.KindInt:
		return variant.Int(-v.Int)
	case variant.KindFloat:
		return variant.Float(-v.Float)
	default:
		return v
	}
}

func hexVal(c rune) rune {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// scanOperatorOrPunctuation handles every remaining single/multi-char
// symbol, including the context-sensitive cases from spec §4.4:
// &&/|| (AND/OR vs distinct tokens), .. (PERIOD_PERIOD vs re-scanned
// PERIOD), and $ (only emitted when the revision has the token).
func (s *Stream) scanOperatorOrPunctuation(line, col int) *Record {
	r := s.advance()
	two := func(next rune, matchGT, elseGT token.GlobalToken) *Record {
		if s.peekRune() == next {
			s.advance()
			return &Record{Global: matchGT, Line: line, Column: col}
		}
		return &Record{Global: elseGT, Line: line, Column: col}
	}

	switch r {
	case '(':
		return &Record{Global: token.G_TK_PARENTHESIS_OPEN, Line: line, Column: col}
	case ')':
		return &Record{Global: token.G_TK_PARENTHESIS_CLOSE, Line: line, Column: col}
	case '[':
		return &Record{Global: token.G_TK_BRACKET_OPEN, Line: line, Column: col}
	case ']':
		return &Record{Global: token.G_TK_BRACKET_CLOSE, Line: line, Column: col}
	case '{':
		return &Record{Global: token.G_TK_CURLY_BRACKET_OPEN, Line: line, Column: col}
	case '}':
		return &Record{Global: token.G_TK_CURLY_BRACKET_CLOSE, Line: line, Column: col}
	case ',':
		return &Record{Global: token.G_TK_COMMA, Line: line, Column: col}
	case ';':
		return &Record{Global: token.G_TK_SEMICOLON, Line: line, Column: col}
	case '?':
		return &Record{Global: token.G_TK_QUESTION_MARK, Line: line, Column: col}
	case ':':
		return &Record{Global: token.G_TK_COLON, Line: line, Column: col}
	case '`':
		return &Record{Global: token.G_TK_BACKTICK, Line: line, Column: col}
	case '~':
		return &Record{Global: token.G_TK_OP_BIT_INVERT, Line: line, Column: col}
	case '^':
		return two('=', token.G_TK_OP_ASSIGN_BIT_XOR, token.G_TK_OP_BIT_XOR)
	case '$':
		if s.rev.HasToken(token.G_TK_DOLLAR) {
			return &Record{Global: token.G_TK_DOLLAR, Line: line, Column: col}
		}
		return &Record{Global: token.G_TK_ERROR, Line: line, Column: col, Error: "unexpected '$'"}
	case '.':
		if s.peekRune() == '.' {
			if s.rev.Flags.Has(revision.FlagPeriodPeriodToken) {
				if s.peekRuneAt(1) == '.' {
					s.advance()
					s.advance()
					return &Record{Global: token.G_TK_PERIOD_PERIOD_PERIOD, Line: line, Column: col}
				}
				s.advance()
				return &Record{Global: token.G_TK_PERIOD_PERIOD, Line: line, Column: col}
			}
			// pre-2.0: first '.' emits PERIOD, the second re-scans.
			return &Record{Global: token.G_TK_PERIOD, Line: line, Column: col}
		}
		return &Record{Global: token.G_TK_PERIOD, Line: line, Column: col}
	case '&':
		if s.peekRune() == '&' {
			s.advance()
			if s.rev.Flags.Has(revision.FlagDistinctLogicalOps) {
				return &Record{Global: token.G_TK_AMPERSAND_AMPERSAND, Line: line, Column: col}
			}
			return &Record{Global: token.G_TK_OP_AND, Line: line, Column: col}
		}
		return two('=', token.G_TK_OP_ASSIGN_BIT_AND, token.G_TK_OP_BIT_AND)
	case '|':
		if s.peekRune() == '|' {
			s.advance()
			if s.rev.Flags.Has(revision.FlagDistinctLogicalOps) {
				return &Record{Global: token.G_TK_PIPE_PIPE, Line: line, Column: col}
			}
			return &Record{Global: token.G_TK_OP_OR, Line: line, Column: col}
		}
		return two('=', token.G_TK_OP_ASSIGN_BIT_OR, token.G_TK_OP_BIT_OR)
	case '+':
		return two('=', token.G_TK_OP_ASSIGN_ADD, token.G_TK_OP_ADD)
	case '-':
		if s.peekRune() == '>' {
			s.advance()
			return &Record{Global: token.G_TK_FORWARD_ARROW, Line: line, Column: col}
		}
		return two('=', token.G_TK_OP_ASSIGN_SUB, token.G_TK_OP_SUB)
	case '*':
		if s.peekRune() == '*' {
			s.advance()
			return two('=', token.G_TK_STAR_STAR_EQUAL, token.G_TK_STAR_STAR)
		}
		return two('=', token.G_TK_OP_ASSIGN_MUL, token.G_TK_OP_MUL)
	case '/':
		return two('=', token.G_TK_OP_ASSIGN_DIV, token.G_TK_OP_DIV)
	case '%':
		return two('=', token.G_TK_OP_ASSIGN_MOD, token.G_TK_OP_MOD)
	case '=':
		return two('=', token.G_TK_OP_EQUAL, token.G_TK_OP_ASSIGN)
	case '!':
		if s.peekRune() == '=' {
			s.advance()
			return &Record{Global: token.G_TK_OP_NOT_EQUAL, Line: line, Column: col}
		}
		return &Record{Global: token.G_TK_BANG, Line: line, Column: col}
	case '<':
		if s.peekRune() == '<' {
			s.advance()
			return two('=', token.G_TK_OP_ASSIGN_SHIFT_LEFT, token.G_TK_OP_SHIFT_LEFT)
		}
		return two('=', token.G_TK_OP_LESS_EQUAL, token.G_TK_OP_LESS)
	case '>':
		if s.peekRune() == '>' {
			s.advance()
			return two('=', token.G_TK_OP_ASSIGN_SHIFT_RIGHT, token.G_TK_OP_SHIFT_RIGHT)
		}
		return two('=', token.G_TK_OP_GREATER_EQUAL, token.G_TK_OP_GREATER)
	default:
		return &Record{Global: token.G_TK_ERROR, Line: line, Column: col, Error: "unexpected character '" + string(r) + "'"}
	}
}
