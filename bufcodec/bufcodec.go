// Package bufcodec implements the Buffer Codec (spec §4.3, C3): reading
// and writing the on-disk tokenized form of a compiled GDScript file,
// in both the legacy and v2-compressed dialects.
//
// The decode loop is grounded on the teacher's vm.Run fetch-decode loop
// (vm/vm.go): walk a flat instruction stream one opcode at a time,
// advancing the cursor by however many bytes that opcode consumed.
package bufcodec

import (
	"encoding/binary"

	"github.com/klauspost/compress/zstd"

	"github.com/nikitalita/gdsdecomp-sub001/gderr"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

var magic = [4]byte{'G', 'D', 'S', 'C'}

// EncodedToken is the 32-bit word described in spec §3 "Encoded Token":
// low 8 bits are a revision-local token id, the upper 24 bits are a
// payload whose meaning depends on the token kind.
type EncodedToken uint32

// NewEncodedToken packs a local token id and payload into one word.
func NewEncodedToken(localID int, payload uint32) EncodedToken {
	return EncodedToken(uint32(localID&revision.TokenMask) | payload<<revision.TokenBits)
}

// LocalID returns the revision-local token id.
func (t EncodedToken) LocalID() int { return int(t) & revision.TokenMask }

// Payload returns the token's payload (identifier index, constant
// index, function index, or NEWLINE indent, depending on token kind).
func (t EncodedToken) Payload() uint32 { return uint32(t) >> revision.TokenBits }

// ScriptState is the C3 output / C5 input data model (spec §3).
type ScriptState struct {
	FormatVersion int
	Identifiers   []string
	Constants     []variant.Value
	Tokens        []EncodedToken
	Lines         map[int]int // token index -> source line (1-based)
	EndLines      map[int]int // token index -> end-of-token line (v2 only)
	Columns       map[int]int // token index -> source column (v2 only)
}

// Codec reads and writes ScriptState buffers given a chosen revision.
// The zero value is not usable; construct with New.
type Codec struct {
	Variant variant.Codec
}

// New builds a Codec using the given Variant Codec Adapter (C2).
func New(v variant.Codec) *Codec {
	return &Codec{Variant: v}
}

// Decode parses data into a ScriptState under rev, dispatching to the
// legacy or v2 dialect based on the format version in the common header
// (spec §4.3 "Common header").
func (c *Codec) Decode(data []byte, rev *revision.Descriptor) (*ScriptState, error) {
	if len(data) < 8 {
		return nil, gderr.New(gderr.InvalidBuffer, "buffer shorter than common header")
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return nil, gderr.New(gderr.InvalidBuffer, "bad magic, expected \"GDSC\"")
	}
	formatVersion := int(le32(data[4:8]))
	if formatVersion != rev.BytecodeVersion {
		return nil, gderr.Newf(gderr.UnsupportedFormat, "buffer format version %d does not match revision format version %d", formatVersion, rev.BytecodeVersion)
	}
	if revision.IsV2(formatVersion) {
		return c.decodeV2(data, formatVersion, rev.VariantFormatMajor)
	}
	return c.decodeLegacy(data, formatVersion, rev.VariantFormatMajor)
}

// Encode serializes state back into a byte buffer under rev (spec §4.3
// encode contract). Callers are responsible for having already ordered
// state.Identifiers/Constants by first reference (spec "Encoding
// invariants").
func (c *Codec) Encode(state *ScriptState, rev *revision.Descriptor) ([]byte, error) {
	if revision.IsV2(rev.BytecodeVersion) {
		return c.encodeV2(state, rev)
	}
	return c.encodeLegacy(state, rev)
}

// encodeFullObjects reports whether the Variant Codec must be told to
// encode-full-objects for this revision (spec §4.3 "Encoding
// invariants": "revision falls before the 3.2.0-dev1 cutoff").
func encodeFullObjects(rev *revision.Descriptor) bool {
	return revision.Compare(rev.EngineVersionMin, "3.2.0-dev1") < 0
}

// --- legacy dialect (format < 100) ---

const legacyHeaderSize = 24

func (c *Codec) decodeLegacy(data []byte, formatVersion, variantFormatMajor int) (*ScriptState, error) {
	if len(data) < legacyHeaderSize {
		return nil, gderr.New(gderr.InvalidBuffer, "legacy header truncated")
	}
	identCount := int(le32(data[8:12]))
	constCount := int(le32(data[12:16]))
	lineCount := int(le32(data[16:20]))
	tokenCount := int(le32(data[20:24]))

	off := legacyHeaderSize
	identifiers, n, err := decodeLegacyIdentifiers(data[off:], identCount)
	if err != nil {
		return nil, err
	}
	off += n

	constants := make([]variant.Value, 0, constCount)
	for i := 0; i < constCount; i++ {
		if off >= len(data) {
			return nil, gderr.New(gderr.InvalidBuffer, "buffer truncated reading constant table")
		}
		v, consumed, err := c.Variant.Decode(variantFormatMajor, data[off:], len(data)-off)
		if err != nil {
			return nil, gderr.Wrap(gderr.VariantDecodeError, "decoding constant", err)
		}
		constants = append(constants, v)
		off += consumed
	}

	lines := make(map[int]int, lineCount)
	for i := 0; i < lineCount; i++ {
		if off+8 > len(data) {
			return nil, gderr.New(gderr.InvalidBuffer, "buffer truncated reading line map")
		}
		idx := int(le32(data[off : off+4]))
		line := int(le32(data[off+4 : off+8]))
		lines[idx] = line
		off += 8
	}

	tokens := make([]EncodedToken, 0, tokenCount)
	for i := 0; i < tokenCount; i++ {
		tok, n, err := decodeTokenWord(data[off:])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		off += n
	}

	return &ScriptState{
		FormatVersion: formatVersion,
		Identifiers:   identifiers,
		Constants:     constants,
		Tokens:        tokens,
		Lines:         lines,
		EndLines:      map[int]int{},
		Columns:       map[int]int{},
	}, nil
}

func decodeLegacyIdentifiers(data []byte, count int) ([]string, int, error) {
	off := 0
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if off+4 > len(data) {
			return nil, off, gderr.New(gderr.InvalidBuffer, "buffer truncated reading identifier length")
		}
		length := int(le32(data[off : off+4]))
		off += 4
		if length < 0 || off+length > len(data) {
			return nil, off, gderr.New(gderr.InvalidBuffer, "buffer truncated reading identifier payload")
		}
		payload := make([]byte, length)
		for j := 0; j < length; j++ {
			payload[j] = data[off+j] ^ revision.IdentifierXOR
		}
		off += length
		if z := indexByte(payload, 0); z >= 0 {
			payload = payload[:z]
		}
		out = append(out, string(payload))
	}
	return out, off, nil
}

func (c *Codec) encodeLegacy(state *ScriptState, rev *revision.Descriptor) ([]byte, error) {
	var body []byte
	for _, s := range state.Identifiers {
		body = append(body, encodeLegacyIdentifier(s)...)
	}
	for _, v := range state.Constants {
		enc, err := c.Variant.Encode(rev.VariantFormatMajor, v, encodeFullObjects(rev))
		if err != nil {
			return nil, gderr.Wrap(gderr.VariantEncodeError, "encoding constant", err)
		}
		body = append(body, enc...)
	}
	body = append(body, encodeLineMap(state.Lines)...)
	for _, tok := range state.Tokens {
		body = append(body, encodeTokenWord(tok)...)
	}

	out := make([]byte, legacyHeaderSize)
	copy(out[0:4], magic[:])
	putLE32(out[4:8], uint32(rev.BytecodeVersion))
	putLE32(out[8:12], uint32(len(state.Identifiers)))
	putLE32(out[12:16], uint32(len(state.Constants)))
	putLE32(out[16:20], uint32(len(state.Lines)))
	putLE32(out[20:24], uint32(len(state.Tokens)))
	return append(out, body...), nil
}

func encodeLegacyIdentifier(s string) []byte {
	raw := append([]byte(s), 0)
	for len(raw)%4 != 0 {
		raw = append(raw, 0)
	}
	masked := make([]byte, len(raw))
	for i, b := range raw {
		masked[i] = b ^ revision.IdentifierXOR
	}
	out := make([]byte, 4)
	putLE32(out, uint32(len(masked)))
	return append(out, masked...)
}

func encodeLineMap(lines map[int]int) []byte {
	keys := sortedKeys(lines)
	out := make([]byte, 0, len(keys)*8)
	for _, k := range keys {
		var pair [8]byte
		putLE32(pair[0:4], uint32(k))
		putLE32(pair[4:8], uint32(lines[k]))
		out = append(out, pair[:]...)
	}
	return out
}

// --- v2 dialect (format >= 100) ---

const v2HeaderSize = 12

func (c *Codec) decodeV2(data []byte, formatVersion, variantFormatMajor int) (*ScriptState, error) {
	if len(data) < v2HeaderSize {
		return nil, gderr.New(gderr.InvalidBuffer, "v2 header truncated")
	}
	decompressedLen := le32(data[8:12])
	var body []byte
	if decompressedLen != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, gderr.Wrap(gderr.CompressionError, "initializing zstd decoder", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data[v2HeaderSize:], make([]byte, 0, decompressedLen))
		if err != nil {
			return nil, gderr.Wrap(gderr.CompressionError, "decompressing v2 body", err)
		}
		if uint32(len(out)) != decompressedLen {
			return nil, gderr.Newf(gderr.CompressionError, "decompressed-size mismatch: got %d, want %d", len(out), decompressedLen)
		}
		body = out
	} else {
		body = data[v2HeaderSize:]
	}

	contentHeaderSize := 16
	if formatVersion >= revision.ContentHeaderSizeChanged {
		contentHeaderSize = 20
	}
	if len(body) < contentHeaderSize {
		return nil, gderr.New(gderr.InvalidBuffer, "v2 content header truncated")
	}
	identCount := int(le32(body[0:4]))
	constCount := int(le32(body[4:8]))
	tokenLineCount := int(le32(body[8:12]))
	var tokenCount int
	if formatVersion >= revision.ContentHeaderSizeChanged {
		tokenCount = int(le32(body[16:20]))
	} else {
		tokenCount = int(le32(body[12:16]))
	}

	off := contentHeaderSize
	identifiers, n, err := decodeV2Identifiers(body[off:], identCount)
	if err != nil {
		return nil, err
	}
	off += n

	constants := make([]variant.Value, 0, constCount)
	for i := 0; i < constCount; i++ {
		if off >= len(body) {
			return nil, gderr.New(gderr.InvalidBuffer, "v2 body truncated reading constant table")
		}
		v, consumed, err := c.Variant.Decode(variantFormatMajor, body[off:], len(body)-off)
		if err != nil {
			return nil, gderr.Wrap(gderr.VariantDecodeError, "decoding constant", err)
		}
		constants = append(constants, v)
		off += consumed
	}

	lines, n, err := decodeIndexValueMap(body[off:], tokenLineCount)
	if err != nil {
		return nil, err
	}
	off += n
	columns, n, err := decodeIndexValueMap(body[off:], tokenLineCount)
	if err != nil {
		return nil, err
	}
	off += n

	tokens := make([]EncodedToken, 0, tokenCount)
	endLines := make(map[int]int, tokenCount)
	for i := 0; i < tokenCount; i++ {
		tok, n, err := decodeTokenWord(body[off:])
		if err != nil {
			return nil, err
		}
		off += n
		if off+4 > len(body) {
			return nil, gderr.New(gderr.InvalidBuffer, "v2 body truncated reading token end-line")
		}
		endLines[i] = int(le32(body[off : off+4]))
		off += 4
		tokens = append(tokens, tok)
	}

	return &ScriptState{
		FormatVersion: formatVersion,
		Identifiers:   identifiers,
		Constants:     constants,
		Tokens:        tokens,
		Lines:         lines,
		EndLines:      endLines,
		Columns:       columns,
	}, nil
}

func decodeV2Identifiers(data []byte, count int) ([]string, int, error) {
	off := 0
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if off+4 > len(data) {
			return nil, off, gderr.New(gderr.InvalidBuffer, "buffer truncated reading identifier code-point count")
		}
		n := int(le32(data[off : off+4]))
		off += 4
		if n < 0 || off+n*4 > len(data) {
			return nil, off, gderr.New(gderr.InvalidBuffer, "buffer truncated reading identifier code points")
		}
		runes := make([]rune, n)
		for j := 0; j < n; j++ {
			cp := le32(data[off+j*4 : off+j*4+4])
			runes[j] = rune(cp ^ revision.IdentifierXOR)
		}
		off += n * 4
		out = append(out, string(runes))
	}
	return out, off, nil
}

func (c *Codec) encodeV2(state *ScriptState, rev *revision.Descriptor) ([]byte, error) {
	var body []byte
	for _, s := range state.Identifiers {
		body = append(body, encodeV2Identifier(s)...)
	}
	for _, v := range state.Constants {
		enc, err := c.Variant.Encode(rev.VariantFormatMajor, v, encodeFullObjects(rev))
		if err != nil {
			return nil, gderr.Wrap(gderr.VariantEncodeError, "encoding constant", err)
		}
		body = append(body, enc...)
	}
	body = append(body, encodeIndexValueMap(state.Lines)...)
	body = append(body, encodeIndexValueMap(state.Columns)...)
	for i, tok := range state.Tokens {
		body = append(body, encodeTokenWord(tok)...)
		var endLine [4]byte
		putLE32(endLine[:], uint32(state.EndLines[i]))
		body = append(body, endLine[:]...)
	}

	contentHeaderSize := 16
	if rev.BytecodeVersion >= revision.ContentHeaderSizeChanged {
		contentHeaderSize = 20
	}
	header := make([]byte, contentHeaderSize)
	putLE32(header[0:4], uint32(len(state.Identifiers)))
	putLE32(header[4:8], uint32(len(state.Constants)))
	putLE32(header[8:12], uint32(len(state.Lines)))
	if contentHeaderSize == 20 {
		putLE32(header[16:20], uint32(len(state.Tokens)))
	} else {
		putLE32(header[12:16], uint32(len(state.Tokens)))
	}
	uncompressed := append(header, body...)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, gderr.Wrap(gderr.CompressionError, "initializing zstd encoder", err)
	}
	compressed := enc.EncodeAll(uncompressed, nil)
	if cerr := enc.Close(); cerr != nil {
		return nil, gderr.Wrap(gderr.CompressionError, "closing zstd encoder", cerr)
	}

	out := make([]byte, v2HeaderSize)
	copy(out[0:4], magic[:])
	putLE32(out[4:8], uint32(rev.BytecodeVersion))
	putLE32(out[8:12], uint32(len(uncompressed)))
	return append(out, compressed...), nil
}

func encodeV2Identifier(s string) []byte {
	runes := []rune(s)
	out := make([]byte, 4, 4+len(runes)*4)
	putLE32(out[0:4], uint32(len(runes)))
	for _, r := range runes {
		var cp [4]byte
		putLE32(cp[:], uint32(r)^revision.IdentifierXOR)
		out = append(out, cp[:]...)
	}
	return out
}

func decodeIndexValueMap(data []byte, count int) (map[int]int, int, error) {
	out := make(map[int]int, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+8 > len(data) {
			return nil, off, gderr.New(gderr.InvalidBuffer, "buffer truncated reading index/value map")
		}
		idx := int(le32(data[off : off+4]))
		val := int(le32(data[off+4 : off+8]))
		out[idx] = val
		off += 8
	}
	return out, off, nil
}

func encodeIndexValueMap(m map[int]int) []byte {
	keys := sortedKeys(m)
	out := make([]byte, 0, len(keys)*8)
	for _, k := range keys {
		var pair [8]byte
		putLE32(pair[0:4], uint32(k))
		putLE32(pair[4:8], uint32(m[k]))
		out = append(out, pair[:]...)
	}
	return out
}

// --- shared token-word codec ---

// decodeTokenWord reads either the 1-byte or 4-byte Encoded Token form
// (spec §3, §4.3), returning the token and the number of bytes consumed.
func decodeTokenWord(data []byte) (EncodedToken, int, error) {
	if len(data) < 1 {
		return 0, 0, gderr.New(gderr.InvalidBuffer, "buffer truncated reading token")
	}
	if data[0]&revision.TokenByteMask == 0 {
		return EncodedToken(data[0]), 1, nil
	}
	if len(data) < 4 {
		return 0, 0, gderr.New(gderr.InvalidBuffer, "buffer truncated reading multi-byte token")
	}
	word := le32(data[0:4])
	word &^= revision.TokenByteMask
	return EncodedToken(word), 4, nil
}

// encodeTokenWord writes an EncodedToken using the single-byte form
// when its payload is zero and its local id fits in 7 bits, the
// multi-byte form otherwise (spec "Encoding invariants").
func encodeTokenWord(tok EncodedToken) []byte {
	if tok.Payload() == 0 && tok.LocalID() < revision.TokenByteMask {
		return []byte{byte(tok.LocalID())}
	}
	word := uint32(tok) | revision.TokenByteMask
	out := make([]byte, 4)
	putLE32(out, word)
	return out
}

// --- small helpers ---

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func putLE32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func indexByte(b []byte, target byte) int {
	for i, c := range b {
		if c == target {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion sort: these maps are small (one entry per line-table
	// record), and callers need deterministic output order (spec
	// "Encoding invariants": "deterministic output is required").
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
