package variant

import "testing"

func TestDefaultRoundTrip(t *testing.T) {
	codec := Default{}
	values := []Value{
		Nil(),
		Bool(true),
		Bool(false),
		Int(42),
		Int(-7),
		Float(3.25),
		String("hello"),
		NodePath("Node2D/Sprite"),
		Vector2(1, 2),
		Vector3(1, 2, 3),
		{Kind: KindArray, Array: []Value{Int(1), String("a"), Bool(true)}},
		{Kind: KindDictionary, Dict: []DictEntry{
			{Key: String("x"), Value: Int(1)},
			{Key: String("y"), Value: Int(2)},
		}},
	}

	for _, v := range values {
		encoded, err := codec.Encode(2, v, false)
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", v, err)
		}
		decoded, consumed, err := codec.Decode(2, encoded, len(encoded))
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if consumed != len(encoded) {
			t.Errorf("consumed %d bytes, want %d", consumed, len(encoded))
		}
		if !Equal(v, decoded) {
			t.Errorf("round trip mismatch: got %+v, want %+v", decoded, v)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	codec := Default{}
	if _, _, err := codec.Decode(2, []byte{1, 2}, 2); err == nil {
		t.Fatal("expected error decoding truncated buffer")
	}
}

func TestTypeNameRoundTrip(t *testing.T) {
	codec := Default{}
	name, ok := codec.TypeName(2, int(tagInt))
	if !ok || name != "int" {
		t.Fatalf("TypeName(int) = %q, %v", name, ok)
	}
	tag, ok := codec.TypeTag(2, "int")
	if !ok || tag != int(tagInt) {
		t.Fatalf("TypeTag(int) = %d, %v", tag, ok)
	}
}
