// Package resolver implements the Revision Resolver (spec §4.7, C7): it
// turns a commit id, an engine version string, or a raw buffer into one
// or more candidate Descriptors from a Registry, using the Validation
// Engine (package validate) to discriminate between revisions that
// share a bytecode format version.
package resolver

import (
	"sort"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/validate"
)

// Resolver wires a Registry and a bufcodec.Codec together to answer the
// three resolution questions the spec assigns to C7.
type Resolver struct {
	registry *revision.Registry
	codec    *bufcodec.Codec
}

// New builds a Resolver over reg, using codec to decode candidate
// buffers when identifying an unknown revision.
func New(reg *revision.Registry, codec *bufcodec.Codec) *Resolver {
	return &Resolver{registry: reg, codec: codec}
}

// ResolveByCommit is a direct registry lookup (spec §4.7).
func (r *Resolver) ResolveByCommit(commitID uint32) (*revision.Descriptor, error) {
	d, ok := r.registry.FindByCommit(commitID)
	if !ok {
		return nil, gderr.Newf(gderr.UnknownRevision, "no revision registered for commit 0x%x", commitID)
	}
	return d, nil
}

// godot43CommitID is the force_latest_major fallback target: the
// earliest 4.x revision whose format is stable enough for mixed use
// (spec §4.7).
const godot43CommitID = revision.Godot43CommitID

// ResolveByVersion parses versionString and finds the covering static
// revision, preferring an exact min/max tag match, then a covering
// range (same major series preferred). If forceLatestMajor is set and
// versionString targets a 4.x engine earlier than 4.3.0-stable, the
// 4.3.0 descriptor is returned before any registry lookup, even when a
// static revision covers versionString.
func (r *Resolver) ResolveByVersion(versionString string, forceLatestMajor bool) (*revision.Descriptor, error) {
	if forceLatestMajor && revision.Major(versionString) == "4" && revision.Compare(versionString, "4.3.0-stable") < 0 {
		if fallback, ok := r.registry.FindByCommit(godot43CommitID); ok {
			return fallback, nil
		}
	}
	d, ok := r.registry.FindByEngineVersion(versionString, true)
	if ok {
		return d, nil
	}
	return nil, gderr.Newf(gderr.UnknownRevision, "no revision covers engine version %q", versionString)
}

// Candidate is one entry of an Identify ranking: the descriptor tried,
// its validation outcome, and a short witness for non-PASS outcomes.
type Candidate struct {
	Revision *revision.Descriptor
	Outcome  validate.Outcome
	Witness  string
}

// Identify walks the registry for revisions whose bytecode format
// version matches data's declared format version, validating each
// (spec §4.6/§4.7). The unique PASS wins; multiple PASSes tie-break by
// highest engine_version_min (most recent). The full ranking is
// returned in registry order (most recent first) so callers can inspect
// every attempt, not just the winner.
func (r *Resolver) Identify(data []byte) ([]Candidate, *revision.Descriptor, error) {
	if len(data) < 8 {
		return nil, nil, gderr.New(gderr.InvalidBuffer, "buffer too short to contain a format version")
	}
	formatVersion := int(le32(data[4:8]))

	all := r.registry.ListAll()
	sort.Slice(all, func(i, j int) bool {
		return revision.Compare(all[i].EngineVersionMin, all[j].EngineVersionMin) > 0
	})

	var candidates []Candidate
	var passes []*revision.Descriptor
	for _, d := range all {
		if d.BytecodeVersion != formatVersion {
			continue
		}
		res := validate.Validate(data, d, r.codec, false)
		c := Candidate{Revision: d, Outcome: res.Outcome, Witness: res.Reason}
		candidates = append(candidates, c)
		if res.Outcome == validate.PASS {
			passes = append(passes, d)
		}
	}

	if len(passes) == 0 {
		return candidates, nil, gderr.New(gderr.UnknownRevision, "no registered revision validates this buffer")
	}

	winner := passes[0]
	for _, p := range passes[1:] {
		if revision.Compare(p.EngineVersionMin, winner.EngineVersionMin) > 0 {
			winner = p
		}
	}
	return candidates, winner, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
