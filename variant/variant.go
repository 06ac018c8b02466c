// Package variant defines the Variant Codec Adapter contract (spec §4.2,
// §6.2): the interface the core depends on to decode/encode the
// scripting language's dynamic value type, plus a default, self
// contained implementation so the rest of this repository is runnable
// without requiring callers to bring their own adapter.
//
// The core (bufcodec, tokenizer, reconstruct, validate) never imports
// this package's concrete Default type directly — every core entry
// point accepts a Codec interface value, consistent with spec §4.2
// describing the adapter as "an interface the core depends on; its
// implementation lies outside the core."
package variant

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/nikitalita/gdsdecomp-sub001/gderr"
)

// Kind is the dynamic type tag of a Value, independent of any
// particular engine revision's numeric encoding of that tag.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVector2
	KindVector3
	KindNodePath
	KindArray
	KindDictionary
)

// Value is the scripting language's dynamic value type. Exactly one of
// the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Vec2  [2]float64
	Vec3  [3]float64
	Array []Value
	Dict  []DictEntry
}

// DictEntry is one key/value pair of a Dictionary Value. Dictionaries
// keep insertion order since the engine itself is order-preserving and
// the Round-Trip Comparator (package compare) needs a stable traversal.
type DictEntry struct {
	Key   Value
	Value Value
}

func Nil() Value                 { return Value{Kind: KindNil} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value      { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func NodePath(s string) Value    { return Value{Kind: KindNodePath, Str: s} }
func Vector2(x, y float64) Value { return Value{Kind: KindVector2, Vec2: [2]float64{x, y}} }
func Vector3(x, y, z float64) Value {
	return Value{Kind: KindVector3, Vec3: [3]float64{x, y, z}}
}

// Equal reports deep equality between two Values, used by package
// compare and by tests asserting round-trip fidelity.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString, KindNodePath:
		return a.Str == b.Str
	case KindVector2:
		return a.Vec2 == b.Vec2
	case KindVector3:
		return a.Vec3 == b.Vec3
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if len(a.Dict) != len(b.Dict) {
			return false
		}
		for i := range a.Dict {
			if !Equal(a.Dict[i].Key, b.Dict[i].Key) || !Equal(a.Dict[i].Value, b.Dict[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Codec is the Variant Codec Adapter contract consumed by the core
// (spec §4.2, §6.2). Implementations are assumed reentrant but not
// thread-safe; callers serialize their own calls (spec §5).
type Codec interface {
	// Decode reads one Value from data, starting at offset 0, never
	// reading more than maxLen bytes. It returns the value and the
	// number of bytes consumed.
	Decode(formatMajor int, data []byte, maxLen int) (Value, int, error)

	// Encode renders value in the wire format used by formatMajor.
	// encodeFullObjects mirrors the contemporaneous compiler's
	// behavior for object-bearing constants on revisions before the
	// 3.2.0-dev1 cutoff (spec §4.3 "Encoding invariants").
	Encode(formatMajor int, value Value, encodeFullObjects bool) ([]byte, error)

	// TypeName returns the adapter's display name for a revision's raw
	// type tag, e.g. for BUILT_IN_TYPE token payloads.
	TypeName(formatMajor int, typeTag int) (string, bool)

	// TypeTag is the inverse of TypeName.
	TypeTag(formatMajor int, name string) (int, bool)

	// ConvertTypeTagToCurrent maps a type tag from formatMajor's
	// numbering to the tag the latest variant format would use for the
	// same logical type, for cross-version comparisons.
	ConvertTypeTagToCurrent(formatMajor int, typeTag int) (int, bool)
}

// tag is the wire representation of a Kind; it is intentionally
// decoupled from Kind's own iota values so that format-major-specific
// renumbering (legacy vs current) lives entirely in the tables below.
type tag uint32

const (
	tagNil tag = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagVector2
	tagVector3
	tagNodePath
	tagArray
	tagDictionary
)

// legacyTagNames and currentTagNames model the two variant dialects
// this default adapter understands: tableFor selects legacyTagNames for
// formatMajor <= 1 and currentTagNames for every higher formatMajor
// (which includes the 3 and 4 used by the static revision table); the
// two tables currently hold the same names. A real adapter would have one
// table per engine major version; this default adapter covers the two
// that distinguish legacy vs v2 buffer dialects end to end (spec §4.3).
var legacyTagNames = map[tag]string{
	tagNil: "Nil", tagBool: "bool", tagInt: "int", tagFloat: "float",
	tagString: "String", tagVector2: "Vector2", tagVector3: "Vector3",
	tagNodePath: "NodePath", tagArray: "Array", tagDictionary: "Dictionary",
}

var currentTagNames = map[tag]string{
	tagNil: "Nil", tagBool: "bool", tagInt: "int", tagFloat: "float",
	tagString: "String", tagVector2: "Vector2", tagVector3: "Vector3",
	tagNodePath: "NodePath", tagArray: "Array", tagDictionary: "Dictionary",
}

func tableFor(formatMajor int) map[tag]string {
	if formatMajor <= 1 {
		return legacyTagNames
	}
	return currentTagNames
}

// Default is the reference Codec implementation used when no other
// adapter is supplied. It covers the value kinds this decompiler needs
// to round-trip: nil, bool, int, float, string, node-path, Vector2/3,
// Array, and Dictionary.
type Default struct{}

var _ Codec = Default{}

func (Default) TypeName(formatMajor int, typeTag int) (string, bool) {
	name, ok := tableFor(formatMajor)[tag(typeTag)]
	return name, ok
}

func (Default) TypeTag(formatMajor int, name string) (int, bool) {
	for t, n := range tableFor(formatMajor) {
		if n == name {
			return int(t), true
		}
	}
	return 0, false
}

func (Default) ConvertTypeTagToCurrent(formatMajor int, typeTag int) (int, bool) {
	name, ok := tableFor(formatMajor)[tag(typeTag)]
	if !ok {
		return 0, false
	}
	for t, n := range currentTagNames {
		if n == name {
			return int(t), true
		}
	}
	return 0, false
}

func (Default) Decode(formatMajor int, data []byte, maxLen int) (Value, int, error) {
	if maxLen > len(data) {
		maxLen = len(data)
	}
	if maxLen < 4 {
		return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated variant header")
	}
	t := tag(binary.LittleEndian.Uint32(data[0:4]))
	rest := data[4:maxLen]
	switch t {
	case tagNil:
		return Nil(), 4, nil
	case tagBool:
		if len(rest) < 4 {
			return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated bool")
		}
		return Bool(binary.LittleEndian.Uint32(rest[:4]) != 0), 8, nil
	case tagInt:
		if len(rest) < 8 {
			return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated int")
		}
		return Int(int64(binary.LittleEndian.Uint64(rest[:8]))), 12, nil
	case tagFloat:
		if len(rest) < 8 {
			return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated float")
		}
		bits := binary.LittleEndian.Uint64(rest[:8])
		return Float(math.Float64frombits(bits)), 12, nil
	case tagString, tagNodePath:
		s, n, err := decodeString(rest)
		if err != nil {
			return Value{}, 0, err
		}
		if t == tagNodePath {
			return NodePath(s), 4 + n, nil
		}
		return String(s), 4 + n, nil
	case tagVector2:
		if len(rest) < 16 {
			return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated Vector2")
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(rest[0:8]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(rest[8:16]))
		return Vector2(x, y), 20, nil
	case tagVector3:
		if len(rest) < 24 {
			return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated Vector3")
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(rest[0:8]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(rest[8:16]))
		z := math.Float64frombits(binary.LittleEndian.Uint64(rest[16:24]))
		return Vector3(x, y, z), 28, nil
	case tagArray:
		return (Default{}).decodeArray(formatMajor, rest)
	case tagDictionary:
		return (Default{}).decodeDictionary(formatMajor, rest)
	default:
		return Value{}, 0, gderr.Newf(gderr.VariantDecodeError, "unknown variant type tag %d", t)
	}
}

func decodeString(data []byte) (string, int, error) {
	if len(data) < 4 {
		return "", 0, gderr.New(gderr.VariantDecodeError, "truncated string length")
	}
	length := int(binary.LittleEndian.Uint32(data[0:4]))
	if length < 0 || 4+length > len(data) {
		return "", 0, gderr.New(gderr.VariantDecodeError, "string length out of range")
	}
	return string(data[4 : 4+length]), 4 + length, nil
}

func (d Default) decodeArray(formatMajor int, data []byte) (Value, int, error) {
	if len(data) < 4 {
		return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated array length")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	consumed := 4
	elems := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, n, err := d.Decode(formatMajor, data[consumed:], len(data)-consumed)
		if err != nil {
			return Value{}, 0, errors.WithMessage(err, "decoding array element")
		}
		elems = append(elems, v)
		consumed += n
	}
	return Value{Kind: KindArray, Array: elems}, 4 + consumed, nil
}

func (d Default) decodeDictionary(formatMajor int, data []byte) (Value, int, error) {
	if len(data) < 4 {
		return Value{}, 0, gderr.New(gderr.VariantDecodeError, "truncated dictionary length")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	consumed := 4
	entries := make([]DictEntry, 0, count)
	for i := 0; i < count; i++ {
		k, n, err := d.Decode(formatMajor, data[consumed:], len(data)-consumed)
		if err != nil {
			return Value{}, 0, errors.WithMessage(err, "decoding dictionary key")
		}
		consumed += n
		v, n2, err := d.Decode(formatMajor, data[consumed:], len(data)-consumed)
		if err != nil {
			return Value{}, 0, errors.WithMessage(err, "decoding dictionary value")
		}
		consumed += n2
		entries = append(entries, DictEntry{Key: k, Value: v})
	}
	return Value{Kind: KindDictionary, Dict: entries}, 4 + consumed, nil
}

func (d Default) Encode(formatMajor int, value Value, encodeFullObjects bool) ([]byte, error) {
	switch value.Kind {
	case KindNil:
		return tagBytes(tagNil), nil
	case KindBool:
		b := uint32(0)
		if value.Bool {
			b = 1
		}
		return append(tagBytes(tagBool), le32(b)...), nil
	case KindInt:
		return append(tagBytes(tagInt), le64(uint64(value.Int))...), nil
	case KindFloat:
		return append(tagBytes(tagFloat), le64(math.Float64bits(value.Float))...), nil
	case KindString:
		return append(tagBytes(tagString), encodeString(value.Str)...), nil
	case KindNodePath:
		return append(tagBytes(tagNodePath), encodeString(value.Str)...), nil
	case KindVector2:
		out := tagBytes(tagVector2)
		out = append(out, le64(math.Float64bits(value.Vec2[0]))...)
		out = append(out, le64(math.Float64bits(value.Vec2[1]))...)
		return out, nil
	case KindVector3:
		out := tagBytes(tagVector3)
		out = append(out, le64(math.Float64bits(value.Vec3[0]))...)
		out = append(out, le64(math.Float64bits(value.Vec3[1]))...)
		out = append(out, le64(math.Float64bits(value.Vec3[2]))...)
		return out, nil
	case KindArray:
		out := tagBytes(tagArray)
		out = append(out, le32(uint32(len(value.Array)))...)
		for _, elem := range value.Array {
			enc, err := d.Encode(formatMajor, elem, encodeFullObjects)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	case KindDictionary:
		out := tagBytes(tagDictionary)
		out = append(out, le32(uint32(len(value.Dict)))...)
		for _, entry := range value.Dict {
			kEnc, err := d.Encode(formatMajor, entry.Key, encodeFullObjects)
			if err != nil {
				return nil, err
			}
			vEnc, err := d.Encode(formatMajor, entry.Value, encodeFullObjects)
			if err != nil {
				return nil, err
			}
			out = append(out, kEnc...)
			out = append(out, vEnc...)
		}
		return out, nil
	default:
		return nil, gderr.Newf(gderr.VariantEncodeError, "unsupported variant kind %d", value.Kind)
	}
}

func tagBytes(t tag) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(t))
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func encodeString(s string) []byte {
	out := le32(uint32(len(s)))
	return append(out, []byte(s)...)
}
