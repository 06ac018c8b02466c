package resolver

import (
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

func newResolver() *Resolver {
	return New(revision.Default(), bufcodec.New(variant.Default{}))
}

func TestResolveByCommit(t *testing.T) {
	r := newResolver()
	d, err := r.ResolveByCommit(0x514a3fb)
	if err != nil {
		t.Fatalf("ResolveByCommit: %v", err)
	}
	if d.Name == "" {
		t.Fatalf("expected a named descriptor, got %+v", d)
	}
}

func TestResolveByCommitUnknown(t *testing.T) {
	r := newResolver()
	_, err := r.ResolveByCommit(0xffffffff)
	if !gderr.Is(err, gderr.UnknownRevision) {
		t.Fatalf("expected UnknownRevision, got %v", err)
	}
}

func TestResolveByVersionExact(t *testing.T) {
	r := newResolver()
	d, err := r.ResolveByVersion("3.1.1-stable", false)
	if err != nil {
		t.Fatalf("ResolveByVersion: %v", err)
	}
	if d.CommitID != 0x514a3fb {
		t.Fatalf("expected commit 0x514a3fb, got 0x%x", d.CommitID)
	}
}

func TestResolveByVersionForceLatestMajor(t *testing.T) {
	r := newResolver()
	d, err := r.ResolveByVersion("4.0.5-stable", true)
	if err != nil {
		t.Fatalf("ResolveByVersion: %v", err)
	}
	if d.CommitID != revision.Godot43CommitID {
		t.Fatalf("expected force_latest_major fallback to 4.3 descriptor, got 0x%x", d.CommitID)
	}
}

func TestResolveByVersionUnknown(t *testing.T) {
	r := newResolver()
	_, err := r.ResolveByVersion("0.0.1-stable", false)
	if !gderr.Is(err, gderr.UnknownRevision) {
		t.Fatalf("expected UnknownRevision, got %v", err)
	}
}

func TestIdentifyPicksPassingRevision(t *testing.T) {
	r := newResolver()
	reg := revision.Default()
	rev, ok := reg.FindByCommit(0x514a3fb)
	if !ok {
		t.Fatal("missing fixture revision")
	}
	varID, _ := rev.LocalTokenFor(token.G_TK_PR_VAR)
	identID, _ := rev.LocalTokenFor(token.G_TK_IDENTIFIER)
	assignID, _ := rev.LocalTokenFor(token.G_TK_OP_ASSIGN)
	constID, _ := rev.LocalTokenFor(token.G_TK_CONSTANT)
	nlID, _ := rev.LocalTokenFor(token.G_TK_NEWLINE)
	eofID, _ := rev.LocalTokenFor(token.G_TK_EOF)

	codec := bufcodec.New(variant.Default{})
	state := &bufcodec.ScriptState{
		FormatVersion: rev.BytecodeVersion,
		Identifiers:   []string{"speed"},
		Constants:     []variant.Value{variant.Int(5)},
		Tokens: []bufcodec.EncodedToken{
			bufcodec.NewEncodedToken(varID, 0),
			bufcodec.NewEncodedToken(identID, 0),
			bufcodec.NewEncodedToken(assignID, 0),
			bufcodec.NewEncodedToken(constID, 0),
			bufcodec.NewEncodedToken(nlID, 0),
			bufcodec.NewEncodedToken(eofID, 0),
		},
		Lines: map[int]int{}, EndLines: map[int]int{}, Columns: map[int]int{},
	}
	data, err := codec.Encode(state, rev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	candidates, winner, err := r.Identify(data)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if winner == nil {
		t.Fatal("expected a winning revision")
	}
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate in the ranking")
	}
}

func TestIdentifyRejectsShortBuffer(t *testing.T) {
	r := newResolver()
	_, _, err := r.Identify([]byte{1, 2, 3})
	if !gderr.Is(err, gderr.InvalidBuffer) {
		t.Fatalf("expected InvalidBuffer, got %v", err)
	}
}
