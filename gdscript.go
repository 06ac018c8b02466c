// Package gdscript is the public API (spec §6.4): a multi-version
// GDScript bytecode decompiler/compiler. It wires the Revision Registry
// (package revision), Variant Codec Adapter (package variant), Buffer
// Codec (package bufcodec), Text Tokenizer (package tokenizer), Source
// Reconstructor (package reconstruct), Validation Engine (package
// validate, reached through the resolver), and Revision Resolver
// (package resolver) into the six top-level operations the spec
// exposes. The Round-Trip Comparator (package compare) is a standalone
// diagnostic and is not used here.
//
// Per spec §7's propagation policy, operations never panic or return a
// Go error from the happy-path boundary; they return a zero-value
// result and record the failure for GetLastError. Internally every
// layer still returns ordinary Go errors (*gderr.Error) — Engine is the
// single place those get turned into the "sentinel plus last-error
// string" contract the spec describes, matching the public-operation
// surface without adopting the taxonomy as this package's own error
// type.
package gdscript

import (
	"sort"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/reconstruct"
	"github.com/nikitalita/gdsdecomp-sub001/resolver"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/tokenizer"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

// Engine is the top-level entry point. The zero value is not usable;
// construct one with New or NewWithVariantCodec.
type Engine struct {
	registry      *revision.Registry
	codec         *bufcodec.Codec
	resolver      *resolver.Resolver
	reconstructor *reconstruct.Reconstructor

	lastError string
}

// New builds an Engine over the statically registered revision table
// (revision.Default) and the built-in Variant codec (variant.Default).
func New() *Engine {
	return NewWithVariantCodec(revision.Default(), variant.Default{})
}

// NewWithVariantCodec builds an Engine over a caller-supplied registry
// and Variant Codec Adapter, for embedders that maintain their own
// revision catalog or need a non-default variant dialect (spec §4.2:
// "implementation is external collaborator").
func NewWithVariantCodec(reg *revision.Registry, vcodec variant.Codec) *Engine {
	codec := bufcodec.New(vcodec)
	return &Engine{
		registry:      reg,
		codec:         codec,
		resolver:      resolver.New(reg, codec),
		reconstructor: reconstruct.New(),
	}
}

// RegisterDynamic adds a revision described by the keyed-map format
// (spec §6.3) to the engine's registry at runtime.
func (e *Engine) RegisterDynamic(fields revision.Fields) (uint32, error) {
	commitID, err := e.registry.RegisterDynamic(fields)
	if err != nil {
		e.lastError = err.Error()
		return 0, err
	}
	return commitID, nil
}

// Decompile identifies the buffer's revision, then reconstructs source
// text from it (spec §6.4). Returns "" and sets GetLastError on
// failure.
func (e *Engine) Decompile(data []byte) string {
	_, rev, err := e.resolver.Identify(data)
	if err != nil {
		e.lastError = err.Error()
		return ""
	}
	text, err := e.decompileFor(data, rev)
	if err != nil {
		e.lastError = err.Error()
		return ""
	}
	e.lastError = ""
	return text
}

// DecompileFor reconstructs source text from data under a known
// revision, skipping identification (spec §6.4).
func (e *Engine) DecompileFor(data []byte, rev *revision.Descriptor) string {
	text, err := e.decompileFor(data, rev)
	if err != nil {
		e.lastError = err.Error()
		return ""
	}
	e.lastError = ""
	return text
}

func (e *Engine) decompileFor(data []byte, rev *revision.Descriptor) (string, error) {
	state, err := e.codec.Decode(data, rev)
	if err != nil {
		return "", err
	}
	return e.reconstructor.Reconstruct(state, rev)
}

// Compile scans text under rev and encodes the resulting token stream
// into the revision's buffer format (spec §6.4). Returns nil and sets
// GetLastError on failure.
func (e *Engine) Compile(text string, rev *revision.Descriptor) []byte {
	state, err := compileToState(text, rev)
	if err != nil {
		e.lastError = err.Error()
		return nil
	}
	data, err := e.codec.Encode(state, rev)
	if err != nil {
		e.lastError = err.Error()
		return nil
	}
	e.lastError = ""
	return data
}

// compileToState runs the tokenizer over text and assembles the
// parallel identifier/constant/token/line tables a ScriptState needs,
// deduplicating identifiers and constants by first-reference order (the
// same order the original compiler's literal/identifier pools use, per
// spec §8 invariant 4's note on table emission order).
func compileToState(text string, rev *revision.Descriptor) (*bufcodec.ScriptState, error) {
	funcIndex := make(map[string]int, len(rev.FunctionTable))
	for i, name := range rev.FunctionTable {
		funcIndex[name] = i
	}

	stream := tokenizer.New(text, rev)
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Lines:         map[int]int{},
		EndLines:      map[int]int{},
		Columns:       map[int]int{},
	}

	identifiers := map[string]int{}
	var constants []variant.Value

	for {
		rec := stream.Next()
		if rec == nil {
			break
		}

		global := rec.Global
		var payload uint32

		switch global {
		case token.G_TK_IDENTIFIER:
			if idx, ok := funcIndex[rec.Text]; ok {
				global = token.G_TK_BUILT_IN_FUNC
				payload = uint32(idx)
			} else {
				idx, ok := identifiers[rec.Text]
				if !ok {
					idx = len(state.Identifiers)
					identifiers[rec.Text] = idx
					state.Identifiers = append(state.Identifiers, rec.Text)
				}
				payload = uint32(idx)
			}
		case token.G_TK_CONSTANT:
			idx := indexOfConstant(constants, rec.Value)
			if idx < 0 {
				idx = len(constants)
				constants = append(constants, rec.Value)
			}
			payload = uint32(idx)
		case token.G_TK_NEWLINE:
			payload = uint32(rec.Indent)
		}

		localID, ok := rev.LocalTokenFor(global)
		if !ok {
			localID, _ = rev.LocalTokenFor(token.G_TK_ERROR)
		}

		i := len(state.Tokens)
		state.Tokens = append(state.Tokens, bufcodec.NewEncodedToken(localID, payload))
		state.Lines[i] = rec.Line
		if rev.IsV2() {
			state.Columns[i] = rec.Column
			state.EndLines[i] = rec.Line
		}

		if global == token.G_TK_EOF {
			break
		}
	}

	state.Constants = constants
	return state, nil
}

func indexOfConstant(constants []variant.Value, v variant.Value) int {
	for i, c := range constants {
		if variant.Equal(c, v) {
			return i
		}
	}
	return -1
}

// Identify ranks every registered revision whose format version matches
// data's declared format version by Validation Engine outcome (spec
// §6.4, §4.7).
func (e *Engine) Identify(data []byte) []resolver.Candidate {
	candidates, _, err := e.resolver.Identify(data)
	if err != nil && len(candidates) == 0 {
		e.lastError = err.Error()
		return nil
	}
	e.lastError = ""
	return candidates
}

// ListRevisions returns every registered revision, most recently
// introduced first (spec §6.4).
func (e *Engine) ListRevisions() []*revision.Descriptor {
	all := e.registry.ListAll()
	sort.Slice(all, func(i, j int) bool {
		return revision.Compare(all[i].EngineVersionMin, all[j].EngineVersionMin) > 0
	})
	return all
}

// ResolveByCommit looks up a revision by commit id (spec §4.7).
func (e *Engine) ResolveByCommit(commitID uint32) *revision.Descriptor {
	d, err := e.resolver.ResolveByCommit(commitID)
	if err != nil {
		e.lastError = err.Error()
		return nil
	}
	e.lastError = ""
	return d
}

// ResolveByVersion looks up a revision by engine version string (spec
// §4.7).
func (e *Engine) ResolveByVersion(versionString string, forceLatestMajor bool) *revision.Descriptor {
	d, err := e.resolver.ResolveByVersion(versionString, forceLatestMajor)
	if err != nil {
		e.lastError = err.Error()
		return nil
	}
	e.lastError = ""
	return d
}

// GetLastError returns the error string set by the most recent failing
// operation, or "" if the last operation succeeded (spec §6.4, §7).
func (e *Engine) GetLastError() string {
	return e.lastError
}
