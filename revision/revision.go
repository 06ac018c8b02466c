// Package revision implements the Revision Registry (spec §4.1, C1): the
// catalog of every supported GDScript bytecode revision, plus the
// sentinel constants from spec §6.5 that several other packages need to
// classify a buffer's dialect.
//
// A registry is read-only after initialization
// except for register_dynamic, which the teacher's own static-table
// idiom (token.KeyWords, token.tokenTypes — module-level data built once
// at init time) inspired but which this package additionally guards
// with a reader-writer lock since dynamic registration may race with
// concurrent lookups (spec §5).
package revision

import (
	"sync"

	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/token"
)

// Sentinel values from spec §6.5.
const (
	GDScript20Version        = 100
	LatestGDScriptVersion    = 101
	ContentHeaderSizeChanged = 101
	TokenByteMask            = 0x80
	TokenBits                = 8
	TokenMask                = 0xFF
	IdentifierXOR            = 0xB6
)

// IsV2 reports whether a bytecode_format_version selects the v2
// (compressed) dialect rather than legacy (spec §4.3).
func IsV2(bytecodeFormatVersion int) bool {
	return bytecodeFormatVersion >= GDScript20Version
}

// Arity is a built-in function's accepted argument count range, used by
// function_arity_overrides (spec §3 Revision Descriptor, §4.6 rule 10).
type Arity struct {
	Min int
	Max int // -1 means unbounded
}

// Flags is the RevisionFlags bitfield computed once at registration time
// from a descriptor's static data (spec §9 "Design Notes" / Open
// Questions), rather than re-derived ad hoc at every tokenizer or
// reconstructor call site.
type Flags uint32

const (
	// FlagNodePathLiteral is set when the revision's token table
	// contains G_TK_DOLLAR — the authoritative signal (per spec §9)
	// for whether @"..." node-path literals are recognized.
	FlagNodePathLiteral Flags = 1 << iota
	// FlagDistinctLogicalOps is set when && / || lex to their own
	// tokens instead of folding onto AND/OR (GDScript 2.0+, i.e. v2
	// dialect).
	FlagDistinctLogicalOps
	// FlagPeriodPeriodToken is set when ".." lexes as one token
	// instead of two PERIODs.
	FlagPeriodPeriodToken
	// FlagBinaryLiterals is set for revisions >= 3.2.0-dev1, which
	// accept 0b... literals.
	FlagBinaryLiterals
	// FlagUnderscoreDigitSeparators is set for revisions >= 3.0.0-stable.
	FlagUnderscoreDigitSeparators
	// FlagMixedIndentIsError is set for revisions >= 3.2.0-stable: mixing
	// spaces before tabs in one indentation prefix is a lexer error.
	FlagMixedIndentIsError
	// FlagMultilineStringNewlineAccounting is set for revisions >=
	// 2.0.0-dev2: a literal newline inside an unterminated multi-line
	// string still advances the lexer's internal line counter.
	FlagMultilineStringNewlineAccounting
)

// Has reports whether every bit in want is set in f.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Descriptor is the Revision Descriptor data model (spec §3). Instances
// are immutable once registered.
type Descriptor struct {
	CommitID          uint32
	Name              string
	EngineVersionMin  string
	EngineVersionMax  string // empty means open-ended
	BytecodeVersion   int
	VariantFormatMajor int
	TokenTable        []token.GlobalToken // index = revision-local token id
	FunctionTable     []string            // index = revision-local function id
	TypeTable         []string            // index = revision-local type tag
	FunctionArity     map[string]Arity
	ParentCommitID    uint32
	Flags             Flags
}

// IsV2 reports whether this descriptor's format selects the v2 dialect.
func (d *Descriptor) IsV2() bool { return IsV2(d.BytecodeVersion) }

// LocalTokenFor returns the revision-local token id for a GlobalToken,
// scanning the (small, <=255 entry) token table once. ok is false if the
// revision does not recognize this global token at all.
func (d *Descriptor) LocalTokenFor(g token.GlobalToken) (int, bool) {
	for i, t := range d.TokenTable {
		if t == g {
			return i, true
		}
	}
	return 0, false
}

// GlobalTokenFor maps a revision-local token id back to its GlobalToken.
func (d *Descriptor) GlobalTokenFor(localID int) (token.GlobalToken, bool) {
	if localID < 0 || localID >= len(d.TokenTable) {
		return 0, false
	}
	return d.TokenTable[localID], true
}

// HasToken reports whether the revision's token table contains g at all.
func (d *Descriptor) HasToken(g token.GlobalToken) bool {
	_, ok := d.LocalTokenFor(g)
	return ok
}

// FunctionArityFor resolves the arity for a built-in function name,
// honoring function_arity_overrides before any adapter-reported default.
func (d *Descriptor) FunctionArityFor(name string, fallback Arity) Arity {
	if a, ok := d.FunctionArity[name]; ok {
		return a
	}
	return fallback
}

// validate checks the required-field invariants from spec §4.1 and
// §6.3 ("Missing any required field → BadRegistration").
func validate(d *Descriptor) error {
	if d.BytecodeVersion == 0 {
		return gderr.New(gderr.BadRegistration, "bytecode_version is required and must be non-zero")
	}
	if d.CommitID == 0 {
		return gderr.New(gderr.BadRegistration, "commit id is required and must be non-zero")
	}
	if d.VariantFormatMajor == 0 {
		return gderr.New(gderr.BadRegistration, "variant_ver_major is required and must be non-zero")
	}
	if d.EngineVersionMin == "" {
		return gderr.New(gderr.BadRegistration, "engine_version is required and must be non-empty")
	}
	if len(d.TokenTable) == 0 {
		return gderr.New(gderr.BadRegistration, "tk_names is required and must be non-empty")
	}
	required := []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_NEWLINE, token.G_TK_EOF}
	for _, r := range required {
		if !d.HasToken(r) {
			return gderr.Newf(gderr.BadRegistration, "token table missing required token %s", r)
		}
	}
	for _, t := range d.TokenTable {
		if t >= token.G_TK_MAX {
			return gderr.Newf(gderr.BadRegistration, "token table entry %s is not less than G_TK_MAX", t)
		}
	}
	seen := make(map[string]bool, len(d.FunctionTable))
	for _, fn := range d.FunctionTable {
		if seen[fn] {
			return gderr.Newf(gderr.BadRegistration, "function table has duplicate entry %q", fn)
		}
		seen[fn] = true
	}
	return nil
}

// computeFlags derives the RevisionFlags bitfield from static data,
// following spec §9's recommendation to resolve the node-path Open
// Question from the presence of G_TK_DOLLAR in the token table, rather
// than re-derive it ad hoc.
func computeFlags(d *Descriptor) Flags {
	var f Flags
	if d.HasToken(token.G_TK_DOLLAR) {
		f |= FlagNodePathLiteral
	}
	if d.HasToken(token.G_TK_AMPERSAND_AMPERSAND) || d.IsV2() {
		f |= FlagDistinctLogicalOps
	}
	if d.HasToken(token.G_TK_PERIOD_PERIOD) {
		f |= FlagPeriodPeriodToken
	}
	if Compare(d.EngineVersionMin, "3.2.0-dev1") >= 0 {
		f |= FlagBinaryLiterals
	}
	if Compare(d.EngineVersionMin, "3.0.0-stable") >= 0 {
		f |= FlagUnderscoreDigitSeparators
	}
	if Compare(d.EngineVersionMin, "3.2.0-stable") >= 0 {
		f |= FlagMixedIndentIsError
	}
	if Compare(d.EngineVersionMin, "2.0.0-dev2") >= 0 {
		f |= FlagMultilineStringNewlineAccounting
	}
	return f
}

// Registry holds every registered Descriptor: the static entries loaded
// by Default(), plus any registered at runtime via RegisterDynamic
// (spec §4.1 "Semantics": "dynamic entries persist only for the process
// lifetime"). The registry is append-only.
type Registry struct {
	mu      sync.RWMutex
	byID    map[uint32]*Descriptor
	order   []uint32 // registration order, oldest first
}

// NewRegistry returns an empty registry. Use Default() for a
// registry pre-loaded with the static table.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Descriptor)}
}

// Register inserts a descriptor, computing its Flags, and enforcing the
// same required-field + duplicate-commit-id checks as RegisterDynamic.
// Used both by the static table loader and by RegisterDynamic.
func (r *Registry) Register(d *Descriptor) error {
	if err := validate(d); err != nil {
		return err
	}
	d.Flags = computeFlags(d)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[d.CommitID]; exists {
		return gderr.Newf(gderr.BadRegistration, "duplicate commit id %#x", d.CommitID)
	}
	r.byID[d.CommitID] = d
	r.order = append(r.order, d.CommitID)
	return nil
}

// ListAll enumerates every registered revision, in registration order.
func (r *Registry) ListAll() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// FindByCommit looks up a revision by its commit id.
func (r *Registry) FindByCommit(commitID uint32) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[commitID]
	return d, ok
}

// FindByEngineVersion resolves a revision covering versionString. Exact
// matches against either bound (including pre-release tags) win first;
// otherwise the static revision whose [min,max] range covers the input
// is returned, preferring the same major series, and tie-breaking on
// the highest engine_version_min (spec §4.7).
func (r *Registry) FindByEngineVersion(versionString string, allowPrereleaseMatch bool) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var exact *Descriptor
	var bestCovering *Descriptor
	for _, id := range r.order {
		d := r.byID[id]
		if d.EngineVersionMin == versionString || d.EngineVersionMax == versionString {
			if exact == nil || Compare(d.EngineVersionMin, exact.EngineVersionMin) > 0 {
				exact = d
			}
			continue
		}
		if !allowPrereleaseMatch && IsPrerelease(versionString) && !IsPrerelease(d.EngineVersionMin) {
			continue
		}
		if Covers(d.EngineVersionMin, d.EngineVersionMax, versionString) {
			if bestCovering == nil || preferRevision(d, bestCovering, versionString) {
				bestCovering = d
			}
		}
	}
	if exact != nil {
		return exact, true
	}
	if bestCovering != nil {
		return bestCovering, true
	}
	return nil, false
}

// preferRevision implements the same-major-series + most-recent
// tie-break from spec §4.7.
func preferRevision(candidate, current *Descriptor, target string) bool {
	candidateSameMajor := Major(candidate.EngineVersionMin) == Major(target)
	currentSameMajor := Major(current.EngineVersionMin) == Major(target)
	if candidateSameMajor != currentSameMajor {
		return candidateSameMajor
	}
	return Compare(candidate.EngineVersionMin, current.EngineVersionMin) > 0
}

// Fields is the keyed-map registration format from spec §6.3.
type Fields struct {
	BytecodeVersion  int
	BytecodeRev      uint32
	EngineVerMajor   int
	VariantVerMajor  int
	EngineVersion    string
	MaxEngineVersion string
	Date             string
	Parent           uint32
	TKNames          []string
	FuncNames        []string
}

// RegisterDynamic validates and inserts a descriptor built from the
// keyed-map registration format (spec §4.1 register_dynamic, §6.3).
func (r *Registry) RegisterDynamic(fields Fields) (uint32, error) {
	if fields.BytecodeVersion == 0 {
		return 0, gderr.New(gderr.BadRegistration, "bytecode_version is required and must be non-zero")
	}
	if fields.BytecodeRev == 0 {
		return 0, gderr.New(gderr.BadRegistration, "bytecode_rev is required and must be non-zero")
	}
	if fields.EngineVerMajor == 0 {
		return 0, gderr.New(gderr.BadRegistration, "engine_ver_major is required and must be non-zero")
	}
	if fields.VariantVerMajor == 0 {
		return 0, gderr.New(gderr.BadRegistration, "variant_ver_major is required and must be non-zero")
	}
	if fields.EngineVersion == "" {
		return 0, gderr.New(gderr.BadRegistration, "engine_version is required and must be non-empty")
	}
	if len(fields.TKNames) == 0 {
		return 0, gderr.New(gderr.BadRegistration, "tk_names is required and must be non-empty")
	}

	tokenTable := make([]token.GlobalToken, 0, len(fields.TKNames))
	for _, name := range fields.TKNames {
		gt, ok := token.FromName(name)
		if !ok {
			return 0, gderr.Newf(gderr.BadRegistration, "unknown GlobalToken name %q", name)
		}
		tokenTable = append(tokenTable, gt)
	}

	d := &Descriptor{
		CommitID:           fields.BytecodeRev,
		Name:               fields.Date,
		EngineVersionMin:   fields.EngineVersion,
		EngineVersionMax:   fields.MaxEngineVersion,
		BytecodeVersion:    fields.BytecodeVersion,
		VariantFormatMajor: fields.VariantVerMajor,
		TokenTable:         tokenTable,
		FunctionTable:      append([]string(nil), fields.FuncNames...),
		ParentCommitID:     fields.Parent,
	}
	if err := r.Register(d); err != nil {
		return 0, err
	}
	return d.CommitID, nil
}
