package bufcodec

import (
	"testing"

	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

func testState() *ScriptState {
	return &ScriptState{
		FormatVersion: 13,
		Identifiers:   []string{"speed", "_ready"},
		Constants:     []variant.Value{variant.Int(5), variant.String("hi")},
		Tokens: []EncodedToken{
			NewEncodedToken(1, 0),        // IDENTIFIER payload index 0
			NewEncodedToken(23, 0),       // OP_ASSIGN (no payload)
			NewEncodedToken(2, 0),        // CONSTANT payload index 0
			NewEncodedToken(200, 300000), // multi-byte form with large payload
		},
		Lines:    map[int]int{0: 1, 2: 2},
		EndLines: map[int]int{},
		Columns:  map[int]int{},
	}
}

func legacyDescriptor() *revision.Descriptor {
	r := revision.Default()
	d, ok := r.FindByCommit(0x514a3fb)
	if !ok {
		panic("missing test fixture revision")
	}
	return d
}

func TestTokenWordRoundTrip(t *testing.T) {
	cases := []EncodedToken{
		NewEncodedToken(0, 0),
		NewEncodedToken(127, 0),
		NewEncodedToken(128, 0),
		NewEncodedToken(5, 42),
		NewEncodedToken(int(token.G_TK_IDENTIFIER), 9999),
	}
	for _, tok := range cases {
		encoded := encodeTokenWord(tok)
		decoded, n, err := decodeTokenWord(encoded)
		if err != nil {
			t.Fatalf("decodeTokenWord: %v", err)
		}
		if n != len(encoded) {
			t.Errorf("consumed %d, want %d", n, len(encoded))
		}
		if decoded.Payload() != tok.Payload() {
			t.Errorf("payload mismatch: got %d, want %d", decoded.Payload(), tok.Payload())
		}
	}
}

func TestLegacyRoundTrip(t *testing.T) {
	rev := legacyDescriptor()
	codec := New(variant.Default{})
	state := testState()
	state.FormatVersion = rev.BytecodeVersion

	encoded, err := codec.Encode(state, rev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(encoded, rev)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Identifiers) != len(state.Identifiers) {
		t.Fatalf("identifiers: got %d, want %d", len(decoded.Identifiers), len(state.Identifiers))
	}
	for i, id := range state.Identifiers {
		if decoded.Identifiers[i] != id {
			t.Errorf("identifier[%d] = %q, want %q", i, decoded.Identifiers[i], id)
		}
	}
	if len(decoded.Tokens) != len(state.Tokens) {
		t.Fatalf("tokens: got %d, want %d", len(decoded.Tokens), len(state.Tokens))
	}
	for i := range decoded.Lines {
		if decoded.Lines[i] != state.Lines[i] {
			t.Errorf("line[%d] = %d, want %d", i, decoded.Lines[i], state.Lines[i])
		}
	}
}

func TestV2RoundTrip(t *testing.T) {
	r := revision.Default()
	rev, ok := r.FindByCommit(0xed51bd6)
	if !ok {
		t.Fatal("missing v2 test fixture revision")
	}
	codec := New(variant.Default{})
	state := testState()
	state.FormatVersion = rev.BytecodeVersion
	state.EndLines = map[int]int{0: 1, 1: 1, 2: 2, 3: 2}
	state.Columns = map[int]int{0: 1, 2: 10}

	encoded, err := codec.Encode(state, rev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := codec.Decode(encoded, rev)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Tokens) != len(state.Tokens) {
		t.Fatalf("tokens: got %d, want %d", len(decoded.Tokens), len(state.Tokens))
	}
	for i, want := range state.Identifiers {
		if decoded.Identifiers[i] != want {
			t.Errorf("identifier[%d] = %q, want %q", i, decoded.Identifiers[i], want)
		}
	}
	for i, v := range state.EndLines {
		if decoded.EndLines[i] != v {
			t.Errorf("end_line[%d] = %d, want %d", i, decoded.EndLines[i], v)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	rev := legacyDescriptor()
	codec := New(variant.Default{})
	_, err := codec.Decode([]byte("XXXX0000000000000000000000"), rev)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}
