package revision

import (
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/token"
)

func TestDefaultRegistryListAll(t *testing.T) {
	r := Default()
	all := r.ListAll()
	if len(all) == 0 {
		t.Fatal("expected at least one static revision")
	}
	for _, d := range all {
		for _, required := range []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_NEWLINE, token.G_TK_EOF} {
			if !d.HasToken(required) {
				t.Errorf("revision %#x missing required token %s", d.CommitID, required)
			}
		}
	}
}

func TestFindByCommit(t *testing.T) {
	r := Default()
	d, ok := r.FindByCommit(0x514a3fb)
	if !ok {
		t.Fatal("expected to find commit 0x514a3fb")
	}
	if d.EngineVersionMin != "3.1.1-stable" {
		t.Errorf("EngineVersionMin = %q, want 3.1.1-stable", d.EngineVersionMin)
	}
	if _, ok := r.FindByCommit(0xdeadbeef); ok {
		t.Error("expected commit 0xdeadbeef to be absent")
	}
}

func TestFindByEngineVersionExactAndCovering(t *testing.T) {
	r := Default()

	d, ok := r.FindByEngineVersion("3.1.1-stable", true)
	if !ok || d.CommitID != 0x514a3fb {
		t.Fatalf("exact match failed: %v %#x", ok, d.CommitID)
	}

	d, ok = r.FindByEngineVersion("3.1.1.1-stable-doesnotexist", true)
	if ok {
		t.Fatalf("expected no match for bogus version, got %#x", d.CommitID)
	}

	d, ok = r.FindByEngineVersion("3.2.1-stable", true)
	if !ok || d.BytecodeVersion < GDScript20Version {
		t.Fatalf("expected a v2 revision covering 3.2.1-stable, got %v %+v", ok, d)
	}
}

func TestRegisterDynamicRejectsMissingFields(t *testing.T) {
	r := NewRegistry()
	_, err := r.RegisterDynamic(Fields{})
	if !gderr.Is(err, gderr.BadRegistration) {
		t.Fatalf("expected BadRegistration, got %v", err)
	}
}

func TestRegisterDynamicRejectsDuplicateCommit(t *testing.T) {
	r := NewRegistry()
	fields := Fields{
		BytecodeVersion: 13,
		BytecodeRev:     1,
		EngineVerMajor:  3,
		VariantVerMajor: 3,
		EngineVersion:   "3.0.0-stable",
		TKNames:         []string{"IDENTIFIER", "CONSTANT", "NEWLINE", "EOF"},
	}
	if _, err := r.RegisterDynamic(fields); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := r.RegisterDynamic(fields); !gderr.Is(err, gderr.BadRegistration) {
		t.Fatalf("expected BadRegistration on duplicate commit id, got %v", err)
	}
}

func TestComputeFlagsNodePathFromDollarToken(t *testing.T) {
	r := NewRegistry()
	d := &Descriptor{
		CommitID:           2,
		EngineVersionMin:   "3.0.0-dev5",
		BytecodeVersion:    13,
		VariantFormatMajor: 3,
		TokenTable:         []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_NEWLINE, token.G_TK_EOF, token.G_TK_DOLLAR},
	}
	if err := r.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !d.Flags.Has(FlagNodePathLiteral) {
		t.Error("expected FlagNodePathLiteral to be set when token table has G_TK_DOLLAR")
	}

	d2 := &Descriptor{
		CommitID:           3,
		EngineVersionMin:   "2.0.0-stable",
		BytecodeVersion:    10,
		VariantFormatMajor: 2,
		TokenTable:         []token.GlobalToken{token.G_TK_IDENTIFIER, token.G_TK_CONSTANT, token.G_TK_NEWLINE, token.G_TK_EOF},
	}
	if err := r.Register(d2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d2.Flags.Has(FlagNodePathLiteral) {
		t.Error("expected FlagNodePathLiteral to be unset without G_TK_DOLLAR")
	}
}

func TestSemverCompareAndCovers(t *testing.T) {
	if Compare("3.2.0-dev1", "3.2.0-stable") >= 0 {
		t.Error("expected dev1 < stable")
	}
	if !Covers("3.0.0-stable", "3.0.6-stable", "3.0.3-stable") {
		t.Error("expected 3.0.3-stable to be covered by [3.0.0-stable, 3.0.6-stable]")
	}
	if Covers("3.0.0-stable", "3.0.6-stable", "3.1.0-stable") {
		t.Error("expected 3.1.0-stable to not be covered")
	}
	if !Covers("4.3.0-stable", "", "4.5.0-stable") {
		t.Error("expected open-ended max to cover later versions")
	}
	if Major("3.2.0-dev1") != "3" {
		t.Errorf("Major(3.2.0-dev1) = %q, want 3", Major("3.2.0-dev1"))
	}
}
