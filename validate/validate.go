// Package validate implements the Validation Engine (spec §4.6, C6): it
// classifies a decoded ScriptState as PASS, FAIL, or CORRUPT under a
// candidate revision by structural and per-token sanity checks. The
// Resolver (package resolver) uses this to discriminate between
// revisions that share a bytecode format version.
//
// The nesting-depth counter used for built-in call arity checking is
// modeled on the teacher's vm.Stack (vm/stack.go): a thin push/pop/peek
// wrapper, generalized here to track parenthesis nesting instead of
// runtime values.
package validate

import (
	"fmt"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
)

// Outcome is one of the three classifications the Validation Engine can
// return for a buffer under a candidate revision.
type Outcome int

const (
	PASS Outcome = iota
	FAIL
	CORRUPT
)

func (o Outcome) String() string {
	switch o {
	case PASS:
		return "PASS"
	case FAIL:
		return "FAIL"
	case CORRUPT:
		return "CORRUPT"
	default:
		return "UNKNOWN"
	}
}

// Result carries the classification plus, for FAIL, a witness line and
// human-readable reason (spec §4.6's "witness" terminology, reused from
// the Resolver's candidate listing, spec §4.2).
type Result struct {
	Outcome Outcome
	Reason  string
	Line    int
}

func pass() Result                { return Result{Outcome: PASS} }
func corrupt(reason string) Result { return Result{Outcome: CORRUPT, Reason: reason} }
func fail(reason string, line int) Result {
	return Result{Outcome: FAIL, Reason: reason, Line: line}
}

// depthStack is a minimal nesting-depth counter for parenthesis tracking
// while walking a built-in call's argument list.
type depthStack []int

func (s *depthStack) push(v int) { *s = append(*s, v) }
func (s *depthStack) pop() (int, bool) {
	if len(*s) == 0 {
		return 0, false
	}
	i := len(*s) - 1
	v := (*s)[i]
	*s = (*s)[:i]
	return v, true
}
func (s *depthStack) peek() (int, bool) {
	if len(*s) == 0 {
		return 0, false
	}
	return (*s)[len(*s)-1], true
}

// Validate classifies data as PASS/FAIL/CORRUPT under rev. It decodes
// data itself (a CORRUPT result means decode failed outright; a FAIL
// result means decode succeeded but a structural rule was violated).
func Validate(data []byte, rev *revision.Descriptor, codec *bufcodec.Codec, verbose bool) Result {
	state, err := codec.Decode(data, rev)
	if err != nil {
		return corrupt(err.Error())
	}
	return ValidateState(state, rev, verbose)
}

// ValidateState runs the structural checks (spec §4.6 rules 1-10) over
// an already-decoded ScriptState. It never returns CORRUPT: a
// ScriptState that exists has already survived decode.
func ValidateState(state *bufcodec.ScriptState, rev *revision.Descriptor, verbose bool) Result {
	if state.FormatVersion != rev.BytecodeVersion {
		return fail(fmt.Sprintf("format version %d != revision format version %d", state.FormatVersion, rev.BytecodeVersion), 0)
	}

	globals := make([]token.GlobalToken, len(state.Tokens))
	for i, tok := range state.Tokens {
		gt, ok := rev.GlobalTokenFor(tok.LocalID())
		if !ok {
			return fail(fmt.Sprintf("token[%d] local id %d >= token table length %d", i, tok.LocalID(), len(rev.TokenTable)), lineOf(state, i))
		}
		globals[i] = gt

		if gt == token.G_TK_CURSOR || gt == token.G_TK_MAX {
			return fail(fmt.Sprintf("token[%d] is invalid in a serialized buffer (%s)", i, gt), lineOf(state, i))
		}
		if gt == token.G_TK_ERROR && !rev.IsV2() {
			return fail(fmt.Sprintf("token[%d] is an ERROR token (legacy revisions cannot emit these)", i), lineOf(state, i))
		}
		if gt == token.G_TK_BUILT_IN_FUNC {
			if tok.Payload() >= uint32(len(rev.FunctionTable)) {
				return fail(fmt.Sprintf("token[%d] BUILT_IN_FUNC index %d >= function table length %d", i, tok.Payload(), len(rev.FunctionTable)), lineOf(state, i))
			}
		}
	}

	for i, gt := range globals {
		if isRelaxed(globals, i) {
			continue
		}
		switch gt {
		case token.G_TK_PR_FUNCTION:
			if !functionFollowedByCallSite(globals, i, rev.IsV2()) {
				return fail("FUNCTION token not followed by a name+'(' or, for v2, a lambda '('", lineOf(state, i))
			}
		case token.G_TK_PR_ENUM:
			if !enumFollowedByNameOrBrace(globals, i) {
				return fail("ENUM token not followed by IDENTIFIER or '{'", lineOf(state, i))
			}
		case token.G_TK_PR_STATIC:
			if !staticFollowedByFunctionOrVar(globals, i, rev.IsV2()) {
				return fail("STATIC token not followed by FUNCTION (or VAR, v2)", lineOf(state, i))
			}
		case token.G_TK_CF_PASS:
			if !rev.IsV2() && !passFollowedByTerminator(globals, i) {
				return fail("PASS token not followed by NEWLINE, SEMICOLON, or EOF", lineOf(state, i))
			}
		}
	}

	if res := checkBuiltinArity(state, globals, rev); res.Outcome != PASS {
		return res
	}

	return pass()
}

func lineOf(state *bufcodec.ScriptState, i int) int {
	if l, ok := state.Lines[i]; ok {
		return l
	}
	return 0
}

// isRelaxed reports whether the token at i is a reserved word that the
// identifier-vs-keyword relaxation (spec §4.6) demotes to a plain
// identifier: preceded by '.' (member access) or by 'func' (a named
// function declaration using a reserved word as its name).
func isRelaxed(globals []token.GlobalToken, i int) bool {
	if i == 0 {
		return false
	}
	prev := globals[i-1]
	return prev == token.G_TK_PERIOD || prev == token.G_TK_PR_FUNCTION
}

func functionFollowedByCallSite(globals []token.GlobalToken, i int, isV2 bool) bool {
	for j := i + 1; j <= i+2 && j < len(globals); j++ {
		if globals[j] == token.G_TK_IDENTIFIER {
			if j+1 < len(globals) && globals[j+1] == token.G_TK_PARENTHESIS_OPEN {
				return true
			}
		}
		if isV2 && globals[j] == token.G_TK_PARENTHESIS_OPEN {
			return true
		}
	}
	return false
}

func enumFollowedByNameOrBrace(globals []token.GlobalToken, i int) bool {
	if i+1 >= len(globals) {
		return false
	}
	next := globals[i+1]
	return next == token.G_TK_IDENTIFIER || next == token.G_TK_CURLY_BRACKET_OPEN
}

func staticFollowedByFunctionOrVar(globals []token.GlobalToken, i int, isV2 bool) bool {
	if i+1 >= len(globals) {
		return false
	}
	next := globals[i+1]
	if next == token.G_TK_PR_FUNCTION {
		return true
	}
	return isV2 && next == token.G_TK_PR_VAR
}

func passFollowedByTerminator(globals []token.GlobalToken, i int) bool {
	if i+1 >= len(globals) {
		return false
	}
	switch globals[i+1] {
	case token.G_TK_NEWLINE, token.G_TK_SEMICOLON, token.G_TK_EOF:
		return true
	default:
		return false
	}
}

// checkBuiltinArity walks every BUILT_IN_FUNC call token (one followed
// by an opening paren) and counts comma-separated arguments at
// parenthesis-nesting level zero, per spec §4.6 rule 10.
func checkBuiltinArity(state *bufcodec.ScriptState, globals []token.GlobalToken, rev *revision.Descriptor) Result {
	for i, gt := range globals {
		if gt != token.G_TK_BUILT_IN_FUNC {
			continue
		}
		if i+1 >= len(globals) || globals[i+1] != token.G_TK_PARENTHESIS_OPEN {
			continue
		}
		idx := int(state.Tokens[i].Payload())
		if idx >= len(rev.FunctionTable) {
			continue // already reported by the index-range check above
		}
		name := rev.FunctionTable[idx]
		arity := rev.FunctionArityFor(name, revision.Arity{Min: 0, Max: -1})

		argc, ok := countArguments(globals, i+1)
		if !ok {
			return fail(fmt.Sprintf("unterminated call to built-in '%s'", name), lineOf(state, i))
		}
		if argc < arity.Min || (arity.Max >= 0 && argc > arity.Max) {
			return fail(fmt.Sprintf("Built-in call '%s' error, incorrect number of arguments", name), lineOf(state, i))
		}
	}
	return pass()
}

// countArguments counts comma-separated arguments starting at the
// opening paren index openIdx, walking forward until the matching
// close paren at nesting level zero. Returns ok=false if the token
// stream ends before the call closes.
func countArguments(globals []token.GlobalToken, openIdx int) (int, bool) {
	var depth depthStack
	depth.push(0)

	sawAnyArg := false
	argc := 0
	for i := openIdx; i < len(globals); i++ {
		switch globals[i] {
		case token.G_TK_PARENTHESIS_OPEN, token.G_TK_BRACKET_OPEN, token.G_TK_CURLY_BRACKET_OPEN:
			d, _ := depth.peek()
			depth.push(d + 1)
			if i == openIdx {
				continue
			}
		case token.G_TK_PARENTHESIS_CLOSE, token.G_TK_BRACKET_CLOSE, token.G_TK_CURLY_BRACKET_CLOSE:
			d, _ := depth.pop()
			if d == 1 && globals[i] == token.G_TK_PARENTHESIS_CLOSE {
				if sawAnyArg {
					argc++
				}
				return argc, true
			}
		case token.G_TK_COMMA:
			d, _ := depth.peek()
			if d == 1 {
				argc++
			}
			sawAnyArg = true
		default:
			sawAnyArg = true
		}
	}
	return 0, false
}
