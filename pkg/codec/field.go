package codec

import "fmt"

// FieldHeaderSize is the fixed size of a field chunk header:
// tag (4) + inline length (2).
const FieldHeaderSize = 6

// MaxInlineFieldLen is the largest payload describable by the 16-bit
// inline length. Longer payloads need an XXXX bridge field.
const MaxInlineFieldLen = 0xFFFF

// BridgeTag marks a bridging field: its 4-byte payload holds the true
// length of the field that immediately follows it.
var BridgeTag = MakeTag("XXXX")

// Field is a single logical subrecord: a tagged, length-prefixed byte
// chunk within a record payload. Payloads are opaque to this package;
// record-kind codecs interpret them. A Field whose payload exceeds
// MaxInlineFieldLen is serialized as an XXXX bridge pair but is always
// presented to callers as one logical field.
type Field struct {
	Tag  Tag
	Data []byte
}

// Size returns the serialized byte length of the field, including the
// header and, for oversized payloads, the bridging field.
func (f Field) Size() int {
	n := FieldHeaderSize + len(f.Data)
	if len(f.Data) > MaxInlineFieldLen {
		// XXXX tag + length + u32 true length
		n += FieldHeaderSize + 4
	}
	return n
}

// FieldsSize returns the serialized byte length of a field sequence.
func FieldsSize(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += f.Size()
	}
	return n
}

// DecodeFields parses a record payload into its ordered field sequence,
// consuming until the payload is exhausted. XXXX bridge pairs are fused
// into single logical fields. The caller must supply the exact payload
// slice; any shortfall against a declared length is ErrTruncatedField.
func DecodeFields(payload []byte) ([]Field, error) {
	r := NewReader(payload)
	var fields []Field
	for r.Remaining() > 0 {
		f, err := decodeField(r)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decodeField(r *Reader) (Field, error) {
	start := r.Pos()
	tag, err := r.Tag()
	if err != nil {
		return Field{}, err
	}
	length, err := r.U16()
	if err != nil {
		return Field{}, err
	}

	if tag == BridgeTag {
		return decodeBridged(r, start, length)
	}

	data, err := r.Bytes(int(length))
	if err != nil {
		return Field{}, fmt.Errorf("%w: field %s at offset %d declares %d bytes",
			ErrTruncatedField, tag, start, length)
	}
	return Field{Tag: tag, Data: data}, nil
}

// decodeBridged consumes the remainder of an XXXX bridge pair: the u32
// true length, then the following field whose inline length is ignored.
func decodeBridged(r *Reader, start int, bridgeLen uint16) (Field, error) {
	if bridgeLen != 4 {
		return Field{}, fmt.Errorf("%w: bridge field at offset %d has length %d, want 4",
			ErrTruncatedField, start, bridgeLen)
	}
	trueLen, err := r.U32()
	if err != nil {
		return Field{}, err
	}
	tag, err := r.Tag()
	if err != nil {
		return Field{}, err
	}
	// Inline length of the bridged field. The engine writes 0; some
	// tools write 0xFFFF. Either way the XXXX value wins.
	if _, err := r.U16(); err != nil {
		return Field{}, err
	}
	data, err := r.Bytes(int(trueLen))
	if err != nil {
		return Field{}, fmt.Errorf("%w: bridged field %s at offset %d declares %d bytes",
			ErrTruncatedField, tag, start, trueLen)
	}
	return Field{Tag: tag, Data: data}, nil
}

// EncodeFields appends the serialized form of fields to w, splitting
// oversized payloads into XXXX bridge pairs.
func EncodeFields(w *Writer, fields []Field) error {
	for _, f := range fields {
		if err := encodeField(w, f); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(w *Writer, f Field) error {
	if len(f.Data) > int(^uint32(0)) {
		return fmt.Errorf("%w: field %s payload of %d bytes exceeds u32",
			ErrSizeInvariant, f.Tag, len(f.Data))
	}
	if len(f.Data) > MaxInlineFieldLen {
		w.Tag(BridgeTag)
		w.U16(4)
		w.U32(uint32(len(f.Data)))
		w.Tag(f.Tag)
		w.U16(0)
		w.Raw(f.Data)
		return nil
	}
	w.Tag(f.Tag)
	w.U16(uint16(len(f.Data)))
	w.Raw(f.Data)
	return nil
}
