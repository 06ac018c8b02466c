package revision

import "github.com/nikitalita/gdsdecomp-sub001/token"

// Godot43CommitID identifies the static table entry used as the
// force_latest_major fallback (spec §4.7): "the earliest revision whose
// format is stable enough for mixed use."
const Godot43CommitID = 0xed51bd6

// legacyCoreTokens is the token table shared by the pre-2.0 (legacy
// dialect) revisions in the static table below, grounded on the local
// id ordering implied by bytecode_base.h's GlobalToken enum together
// with the concrete revision in bytecode_514a3fb.h (bytecode_version
// 13, commit 0x514a3fb, "3.1.1-stable").
var legacyCoreTokens = []token.GlobalToken{
	token.G_TK_EMPTY, token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_SELF,
	token.G_TK_BUILT_IN_TYPE, token.G_TK_BUILT_IN_FUNC, token.G_TK_OP_IN,
	token.G_TK_OP_EQUAL, token.G_TK_OP_NOT_EQUAL, token.G_TK_OP_LESS, token.G_TK_OP_LESS_EQUAL,
	token.G_TK_OP_GREATER, token.G_TK_OP_GREATER_EQUAL, token.G_TK_OP_AND, token.G_TK_OP_OR,
	token.G_TK_OP_NOT, token.G_TK_OP_ADD, token.G_TK_OP_SUB, token.G_TK_OP_MUL, token.G_TK_OP_DIV,
	token.G_TK_OP_MOD, token.G_TK_OP_SHIFT_LEFT, token.G_TK_OP_SHIFT_RIGHT, token.G_TK_OP_ASSIGN,
	token.G_TK_OP_ASSIGN_ADD, token.G_TK_OP_ASSIGN_SUB, token.G_TK_OP_ASSIGN_MUL, token.G_TK_OP_ASSIGN_DIV,
	token.G_TK_OP_ASSIGN_MOD, token.G_TK_OP_ASSIGN_SHIFT_LEFT, token.G_TK_OP_ASSIGN_SHIFT_RIGHT,
	token.G_TK_OP_ASSIGN_BIT_AND, token.G_TK_OP_ASSIGN_BIT_OR, token.G_TK_OP_ASSIGN_BIT_XOR,
	token.G_TK_OP_BIT_AND, token.G_TK_OP_BIT_OR, token.G_TK_OP_BIT_XOR, token.G_TK_OP_BIT_INVERT,
	token.G_TK_CF_IF, token.G_TK_CF_ELIF, token.G_TK_CF_ELSE, token.G_TK_CF_FOR, token.G_TK_CF_WHILE,
	token.G_TK_CF_BREAK, token.G_TK_CF_CONTINUE, token.G_TK_CF_PASS, token.G_TK_CF_RETURN, token.G_TK_CF_MATCH,
	token.G_TK_PR_FUNCTION, token.G_TK_PR_CLASS, token.G_TK_PR_CLASS_NAME, token.G_TK_PR_EXTENDS,
	token.G_TK_PR_IS, token.G_TK_PR_ONREADY, token.G_TK_PR_TOOL, token.G_TK_PR_STATIC, token.G_TK_PR_EXPORT,
	token.G_TK_PR_SETGET, token.G_TK_PR_CONST, token.G_TK_PR_VAR, token.G_TK_PR_AS, token.G_TK_PR_VOID,
	token.G_TK_PR_ENUM, token.G_TK_PR_PRELOAD, token.G_TK_PR_ASSERT, token.G_TK_PR_YIELD, token.G_TK_PR_SIGNAL,
	token.G_TK_PR_BREAKPOINT, token.G_TK_PR_REMOTE, token.G_TK_PR_SYNC, token.G_TK_PR_MASTER, token.G_TK_PR_SLAVE,
	token.G_TK_PR_PUPPET, token.G_TK_PR_REMOTESYNC, token.G_TK_PR_MASTERSYNC, token.G_TK_PR_PUPPETSYNC,
	token.G_TK_BRACKET_OPEN, token.G_TK_BRACKET_CLOSE, token.G_TK_CURLY_BRACKET_OPEN, token.G_TK_CURLY_BRACKET_CLOSE,
	token.G_TK_PARENTHESIS_OPEN, token.G_TK_PARENTHESIS_CLOSE, token.G_TK_COMMA, token.G_TK_SEMICOLON,
	token.G_TK_PERIOD, token.G_TK_QUESTION_MARK, token.G_TK_COLON, token.G_TK_FORWARD_ARROW, token.G_TK_NEWLINE,
	token.G_TK_CONST_PI, token.G_TK_WILDCARD, token.G_TK_CONST_INF, token.G_TK_CONST_NAN, token.G_TK_ERROR, token.G_TK_EOF,
	token.G_TK_CURSOR,
}

// withExtra appends to a copy of base so revisions can share a prefix
// without aliasing each other's slice.
func withExtra(base []token.GlobalToken, extra ...token.GlobalToken) []token.GlobalToken {
	out := make([]token.GlobalToken, len(base), len(base)+len(extra))
	copy(out, base)
	return append(out, extra...)
}

var legacyCoreFunctions = []string{
	"sin", "cos", "tan", "asin", "acos", "atan", "atan2", "sinh", "cosh", "tanh",
	"sqrt", "fmod", "fposmod", "floor", "ceil", "round", "abs", "sign", "pow", "log", "exp",
	"is_nan", "is_inf", "ease", "decimals", "stepify", "lerp", "dectime", "randomize", "randi",
	"randf", "rand_range", "seed", "rand_seed", "deg2rad", "rad2deg", "linear2db", "db2linear",
	"max", "min", "clamp", "nearest_po2", "weakref", "funcref", "convert", "typeof", "type_exists",
	"char", "ord", "str", "print", "printt", "prints", "printerr", "printraw", "var2str", "str2var",
	"var2bytes", "bytes2var", "range", "load", "resource_load", "inst2dict", "dict2inst", "validate_json",
	"parse_json", "to_json", "hash", "Color8", "ColorN", "print_stack", "instance_from_id", "len",
}

// defaultSharedArity are arity overrides common to most legacy
// revisions; 514a3fb additionally changes var2bytes/bytes2var (see
// get_function_arg_count_changed in the original source), modeled below
// on that revision specifically.
var defaultSharedArity = map[string]Arity{
	"print":  {Min: 0, Max: -1},
	"str":    {Min: 0, Max: -1},
	"printt": {Min: 0, Max: -1},
}

// Default returns a new registry pre-loaded with the static revision
// table below. Each call builds a fresh Registry so tests don't
// share dynamic-registration state; production callers should keep a
// single instance (see gdscript.Engine).
func Default() *Registry {
	r := NewRegistry()
	for _, d := range staticDescriptors() {
		if err := r.Register(d); err != nil {
			// Static table corruption is a programmer error, not a
			// runtime condition callers can recover from.
			panic(err)
		}
	}
	return r
}

// staticDescriptors returns the built-in revision table. It spans both
// dialects: legacy (bytecode_version < 100) revisions grounded directly
// on bytecode_514a3fb.h and the shared enum ordering in bytecode_base.h,
// and v2 (>= 100) revisions for the GDScript 2.0 (Godot 3.2/3.3) and
// Godot 4.x lines described narratively in spec §4.3/§4.7.
func staticDescriptors() []*Descriptor {
	legacy30 := &Descriptor{
		CommitID:           0x1a36141,
		Name:               "3.0",
		EngineVersionMin:   "3.0.0-stable",
		EngineVersionMax:   "3.0.6-stable",
		BytecodeVersion:    13,
		VariantFormatMajor: 3,
		TokenTable:         legacyCoreTokens,
		FunctionTable:      legacyCoreFunctions,
		FunctionArity:      defaultSharedArity,
	}

	legacy311 := &Descriptor{
		CommitID:           0x514a3fb,
		Name:               "3.1.1-stable",
		EngineVersionMin:   "3.1.1-stable",
		EngineVersionMax:   "3.1.2-stable",
		BytecodeVersion:    13,
		VariantFormatMajor: 3,
		TokenTable:         legacyCoreTokens,
		FunctionTable:      append(append([]string(nil), legacyCoreFunctions...), "smoothstep"),
		FunctionArity: mergeArity(defaultSharedArity, map[string]Arity{
			"var2bytes": {Min: 1, Max: 2},
			"bytes2var": {Min: 1, Max: 2},
		}),
		ParentCommitID: 0x1a36141,
	}

	// GDScript 2.0 / Godot 3.2 introduces the v2 buffer dialect,
	// distinct && / || / .. / $ tokens, and several new keywords.
	v2Tokens := withExtra(legacyCoreTokens,
		token.G_TK_DOLLAR, token.G_TK_CONST_TAU, token.G_TK_PR_SLAVESYNC,
		token.G_TK_AMPERSAND_AMPERSAND, token.G_TK_PIPE_PIPE, token.G_TK_PERIOD_PERIOD,
	)
	v2Functions := append(append([]string(nil), legacyCoreFunctions...), "wrapi", "wrapf", "smoothstep", "move_toward")

	godot32 := &Descriptor{
		CommitID:           0x7124599,
		Name:               "3.2.0-stable",
		EngineVersionMin:   "3.2.0-stable",
		EngineVersionMax:   "3.2.3-stable",
		BytecodeVersion:    100,
		VariantFormatMajor: 3,
		TokenTable:         v2Tokens,
		FunctionTable:      v2Functions,
		FunctionArity:      defaultSharedArity,
		ParentCommitID:     0x514a3fb,
	}

	godot33 := &Descriptor{
		CommitID:           0x1ca61a3,
		Name:               "3.3.0-stable",
		EngineVersionMin:   "3.3.0-stable",
		EngineVersionMax:   "3.3.4-stable",
		BytecodeVersion:    100,
		VariantFormatMajor: 3,
		TokenTable:         v2Tokens,
		FunctionTable:      v2Functions,
		FunctionArity:      defaultSharedArity,
		ParentCommitID:     godot32.CommitID,
	}

	// Godot 4.x adds annotations, await/namespace/super/trait, and a
	// type_table distinct from the function table (SPEC_FULL.md supplement).
	// Only the 4.3 entry moves to the CONTENT_HEADER_SIZE_CHANGED (101)
	// content-header layout; 4.0 stays on format 100.
	v4Tokens := withExtra(v2Tokens,
		token.G_TK_ANNOTATION, token.G_TK_BANG, token.G_TK_STAR_STAR, token.G_TK_STAR_STAR_EQUAL,
		token.G_TK_PR_AWAIT, token.G_TK_PR_NAMESPACE, token.G_TK_PR_SUPER, token.G_TK_PR_TRAIT,
	)
	v4Functions := append(append([]string(nil), v2Functions...), "is_instance_valid")
	v4Types := []string{"null", "bool", "int", "float", "String", "Vector2", "Vector3", "NodePath", "Array", "Dictionary"}

	godot40 := &Descriptor{
		CommitID:           0x6694c11,
		Name:               "4.0-stable",
		EngineVersionMin:   "4.0.0-stable",
		EngineVersionMax:   "4.1.4-stable",
		BytecodeVersion:    100,
		VariantFormatMajor: 4,
		TokenTable:         v4Tokens,
		FunctionTable:      v4Functions,
		TypeTable:          v4Types,
		FunctionArity:      defaultSharedArity,
		ParentCommitID:     godot33.CommitID,
	}

	godot43 := &Descriptor{
		CommitID:           Godot43CommitID,
		Name:               "4.3-stable",
		EngineVersionMin:   "4.3.0-stable",
		EngineVersionMax:   "",
		BytecodeVersion:    101,
		VariantFormatMajor: 4,
		TokenTable:         withExtra(v4Tokens, token.G_TK_ABSTRACT, token.G_TK_PERIOD_PERIOD_PERIOD),
		FunctionTable:      v4Functions,
		TypeTable:          v4Types,
		FunctionArity:      defaultSharedArity,
		ParentCommitID:     godot40.CommitID,
	}

	return []*Descriptor{legacy30, legacy311, godot32, godot33, godot40, godot43}
}

func mergeArity(base map[string]Arity, extra map[string]Arity) map[string]Arity {
	out := make(map[string]Arity, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
