package gdscript

import (
	"strings"
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/revision"
)

func TestCompileThenDecompileRoundTrip(t *testing.T) {
	e := New()
	rev := e.ResolveByCommit(0x514a3fb)
	if rev == nil {
		t.Fatalf("ResolveByCommit: %s", e.GetLastError())
	}

	src := "var speed = 5\n"
	data := e.Compile(src, rev)
	if data == nil {
		t.Fatalf("Compile: %s", e.GetLastError())
	}

	text := e.DecompileFor(data, rev)
	if e.GetLastError() != "" {
		t.Fatalf("DecompileFor: %s", e.GetLastError())
	}
	if text != src {
		t.Fatalf("got %q, want %q", text, src)
	}
}

func TestDecompileIdentifiesRevisionAutomatically(t *testing.T) {
	e := New()
	rev := e.ResolveByCommit(0x514a3fb)
	if rev == nil {
		t.Fatalf("ResolveByCommit: %s", e.GetLastError())
	}
	data := e.Compile("pass\n", rev)
	if data == nil {
		t.Fatalf("Compile: %s", e.GetLastError())
	}

	text := e.Decompile(data)
	if e.GetLastError() != "" {
		t.Fatalf("Decompile: %s", e.GetLastError())
	}
	if !strings.Contains(text, "pass") {
		t.Fatalf("expected reconstructed text to contain 'pass', got %q", text)
	}
}

func TestListRevisionsNonEmpty(t *testing.T) {
	e := New()
	all := e.ListRevisions()
	if len(all) == 0 {
		t.Fatal("expected at least one registered revision")
	}
}

func TestResolveByCommitUnknownSetsLastError(t *testing.T) {
	e := New()
	d := e.ResolveByCommit(0xdeadbeef)
	if d != nil {
		t.Fatalf("expected nil for unknown commit, got %+v", d)
	}
	if e.GetLastError() == "" {
		t.Fatal("expected GetLastError to be set")
	}
}

func TestRegisterDynamicAndResolve(t *testing.T) {
	e := New()
	commitID, err := e.RegisterDynamic(revision.Fields{
		BytecodeVersion: 5,
		BytecodeRev:     0x99,
		EngineVerMajor:  1,
		VariantVerMajor: 1,
		EngineVersion:   "1.0.0-stable",
		TKNames:         []string{"IDENTIFIER", "CONSTANT", "NEWLINE", "EOF"},
	})
	if err != nil {
		t.Fatalf("RegisterDynamic: %v", err)
	}
	d := e.ResolveByCommit(commitID)
	if d == nil {
		t.Fatalf("ResolveByCommit after dynamic registration: %s", e.GetLastError())
	}
}
