package record

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

func testRecord(tag string, fields ...codec.Field) *Record {
	return &Record{
		Tag:     codec.MakeTag(tag),
		Flags:   0,
		FormID:  0x00012345,
		VC:      VersionControl{Day: 5, Month: 7, LastUser: 0xaa, CurrentUser: 0x30},
		Version: 44,
		Fields:  fields,
	}
}

func roundTrip(t *testing.T, rec *Record) *Record {
	t.Helper()
	w := codec.NewWriter()
	if err := rec.EncodeTo(w); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	out, err := Parse(codec.NewReader(w.Bytes()), dispatch.NewRegistry())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return out
}

func TestRecord_HeaderRoundTrip(t *testing.T) {
	rec := testRecord("WEAP",
		codec.Field{Tag: codec.MakeTag("EDID"), Data: []byte("IronSword\x00")},
		codec.Field{Tag: codec.MakeTag("DATA"), Data: []byte{1, 2, 3, 4, 5, 6}},
	)
	rec.Flags = Flags(FlagPersistent | 0x00800000) // one known bit, one reserved

	out := roundTrip(t, rec)

	if out.Tag != rec.Tag || out.FormID != rec.FormID {
		t.Errorf("identity mismatch: %s %08X", out.Tag, out.FormID)
	}
	if out.Flags != rec.Flags {
		t.Errorf("flags: got %#x, want %#x (reserved bits must pass through)", out.Flags, rec.Flags)
	}
	if out.VC != rec.VC {
		t.Errorf("version control: got %+v, want %+v", out.VC, rec.VC)
	}
	if out.Version != rec.Version || out.Unknown != rec.Unknown {
		t.Errorf("version fields: got %d/%d", out.Version, out.Unknown)
	}
	if len(out.Fields) != 2 || !bytes.Equal(out.Fields[0].Data, rec.Fields[0].Data) {
		t.Errorf("fields corrupted: %v", out.Fields)
	}
}

func TestRecord_WireLayout(t *testing.T) {
	rec := testRecord("GMST", codec.Field{Tag: codec.MakeTag("DATA"), Data: []byte{9}})
	w := codec.NewWriter()
	if err := rec.EncodeTo(w); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	b := w.Bytes()

	if len(b) != HeaderSize+codec.FieldHeaderSize+1 {
		t.Fatalf("total length: got %d", len(b))
	}
	if string(b[0:4]) != "GMST" {
		t.Errorf("tag bytes: %q", b[0:4])
	}
	// declared payload size = one field header + one byte
	if b[4] != 7 || b[5] != 0 || b[6] != 0 || b[7] != 0 {
		t.Errorf("data size bytes: % x", b[4:8])
	}
	// version control bytes land in header order
	if b[16] != 5 || b[17] != 7 || b[18] != 0xaa || b[19] != 0x30 {
		t.Errorf("vc bytes: % x", b[16:20])
	}
}

func TestRecord_CompressionRoundTrip(t *testing.T) {
	long := bytes.Repeat([]byte("skyrim"), 500)
	rec := testRecord("NPC_",
		codec.Field{Tag: codec.MakeTag("EDID"), Data: []byte("Compressed\x00")},
		codec.Field{Tag: codec.MakeTag("DESC"), Data: long},
	)
	rec.Flags = Flags(FlagCompressed)

	w := codec.NewWriter()
	if err := rec.EncodeTo(w); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}

	// The wire payload must actually be compressed: shorter than the raw
	// field stream, and carrying the decompressed length up front.
	wire := w.Bytes()
	rawLen := codec.FieldsSize(rec.Fields)
	declared := int(uint32(wire[4]) | uint32(wire[5])<<8 | uint32(wire[6])<<16 | uint32(wire[7])<<24)
	if declared >= rawLen {
		t.Errorf("declared compressed size %d not smaller than raw %d", declared, rawLen)
	}

	out, err := Parse(codec.NewReader(wire), dispatch.NewRegistry())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !out.Flags.Compressed() {
		t.Error("compressed flag lost")
	}
	if len(out.Fields) != 2 || !bytes.Equal(out.Fields[1].Data, long) {
		t.Error("decompressed field content mismatch")
	}
}

func TestRecord_DecompressionFailures(t *testing.T) {
	mkCompressed := func(payload []byte) []byte {
		w := codec.NewWriter()
		w.Tag(codec.MakeTag("NPC_"))
		w.U32(uint32(len(payload)))
		w.U32(FlagCompressed)
		w.U32(0x1234)
		w.Raw([]byte{0, 0, 0, 0})
		w.U16(44)
		w.U16(0)
		w.Raw(payload)
		return w.Bytes()
	}

	t.Run("garbage blob", func(t *testing.T) {
		payload := append([]byte{10, 0, 0, 0}, []byte("not zlib at all")...)
		_, err := Parse(codec.NewReader(mkCompressed(payload)), dispatch.NewRegistry())
		if !errors.Is(err, codec.ErrDecompressionFailed) {
			t.Fatalf("expected ErrDecompressionFailed, got %v", err)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		var blob bytes.Buffer
		zw := zlib.NewWriter(&blob)
		zw.Write([]byte("DATA\x03\x00abc"))
		zw.Close()

		payload := codec.NewWriter()
		payload.U32(999) // wrong decompressed length
		payload.Raw(blob.Bytes())

		_, err := Parse(codec.NewReader(mkCompressed(payload.Bytes())), dispatch.NewRegistry())
		if !errors.Is(err, codec.ErrDecompressionFailed) {
			t.Fatalf("expected ErrDecompressionFailed, got %v", err)
		}
	})

	t.Run("missing length prefix", func(t *testing.T) {
		_, err := Parse(codec.NewReader(mkCompressed([]byte{1, 2})), dispatch.NewRegistry())
		if !errors.Is(err, codec.ErrDecompressionFailed) {
			t.Fatalf("expected ErrDecompressionFailed, got %v", err)
		}
	})
}

func TestRecord_TruncatedPayload(t *testing.T) {
	rec := testRecord("ARMO", codec.Field{Tag: codec.MakeTag("DATA"), Data: []byte{1, 2, 3}})
	w := codec.NewWriter()
	if err := rec.EncodeTo(w); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	short := w.Bytes()[:len(w.Bytes())-2]

	_, err := Parse(codec.NewReader(short), dispatch.NewRegistry())
	if !errors.Is(err, codec.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestRecord_ZeroFieldPayload(t *testing.T) {
	rec := testRecord("AACT")
	out := roundTrip(t, rec)
	if len(out.Fields) != 0 {
		t.Errorf("expected no fields, got %d", len(out.Fields))
	}
}

func TestRecord_OpaqueAccessor(t *testing.T) {
	rec := testRecord("ZZZZ", codec.Field{Tag: codec.MakeTag("ABCD"), Data: []byte{7}})
	out := roundTrip(t, rec)

	if !out.Opaque() {
		t.Error("unregistered kind should decode opaque")
	}
	f, ok := out.FieldByTag(codec.MakeTag("ABCD"))
	if !ok || !bytes.Equal(f.Data, []byte{7}) {
		t.Errorf("raw field access: ok=%v data=%v", ok, f.Data)
	}
	if _, ok := out.FieldByTag(codec.MakeTag("NOPE")); ok {
		t.Error("FieldByTag found a field that does not exist")
	}
}

// sizeLiar reports a size that disagrees with its own encoding.
type sizeLiar struct{ fields []codec.Field }

func (m *sizeLiar) EncodeFields() ([]codec.Field, error) { return m.fields, nil }
func (m *sizeLiar) Size() int                            { return 1 }

func TestRecord_SizeInvariantViolation(t *testing.T) {
	rec := testRecord("WEAP")
	rec.Model = &sizeLiar{fields: []codec.Field{{Tag: codec.MakeTag("DATA"), Data: []byte{1, 2}}}}

	err := rec.EncodeTo(codec.NewWriter())
	if !errors.Is(err, codec.ErrSizeInvariant) {
		t.Fatalf("expected ErrSizeInvariant, got %v", err)
	}
}
