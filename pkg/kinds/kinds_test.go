package kinds

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/record"
)

func hedrField(version float32, count, nextID uint32) codec.Field {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(version))
	binary.LittleEndian.PutUint32(b[4:8], count)
	binary.LittleEndian.PutUint32(b[8:12], nextID)
	return codec.Field{Tag: TagHEDR, Data: b}
}

func TestTES4_Decode(t *testing.T) {
	data8 := make([]byte, 8)
	fields := []codec.Field{
		hedrField(1.7, 334, 0x1392),
		{Tag: TagCNAM, Data: zbytes("mcarton")},
		{Tag: TagSNAM, Data: zbytes("A test plugin")},
		{Tag: TagMAST, Data: zbytes("Skyrim.esm")},
		{Tag: TagDATA, Data: data8},
		{Tag: TagMAST, Data: zbytes("Update.esm")},
		{Tag: TagDATA, Data: data8},
		{Tag: TagINTV, Data: []byte{1, 0, 0, 0}},
	}

	model, err := (TES4Codec{}).Decode(fields)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	tes4 := model.(*TES4)

	h := tes4.Header()
	if h.Version < 1.69 || h.Version > 1.71 || h.RecordCount != 334 || h.NextObjectID != 0x1392 {
		t.Errorf("header: %+v", h)
	}
	if tes4.Author() != "mcarton" {
		t.Errorf("author: %q", tes4.Author())
	}
	if tes4.Description() != "A test plugin" {
		t.Errorf("description: %q", tes4.Description())
	}

	masters := tes4.Masters()
	if len(masters) != 2 || masters[0].Name != "Skyrim.esm" || masters[1].Name != "Update.esm" {
		t.Errorf("masters: %+v", masters)
	}

	// Re-encode preserves everything, including field order.
	out, err := model.EncodeFields()
	if err != nil {
		t.Fatalf("EncodeFields failed: %v", err)
	}
	if len(out) != len(fields) {
		t.Fatalf("field count changed: %d -> %d", len(fields), len(out))
	}
	for i := range out {
		if out[i].Tag != fields[i].Tag {
			t.Errorf("field %d tag reordered: %s -> %s", i, fields[i].Tag, out[i].Tag)
		}
	}
}

func TestTES4_DecodeRejectsBadHeader(t *testing.T) {
	if _, err := (TES4Codec{}).Decode(nil); err == nil {
		t.Error("expected error for missing HEDR")
	}
	bad := []codec.Field{{Tag: TagHEDR, Data: []byte{1, 2, 3}}}
	if _, err := (TES4Codec{}).Decode(bad); err == nil {
		t.Error("expected error for short HEDR")
	}
}

func TestTES4_SetHeaderRoundTrip(t *testing.T) {
	model, err := (TES4Codec{}).Decode([]codec.Field{hedrField(1.7, 1, 0x800)})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	tes4 := model.(*TES4)

	tes4.SetHeader(FileHeader{Version: 1.71, RecordCount: 42, NextObjectID: 0x900})
	h := tes4.Header()
	if h.RecordCount != 42 || h.NextObjectID != 0x900 {
		t.Errorf("after SetHeader: %+v", h)
	}
}

func TestTES4_Overrides(t *testing.T) {
	onam := make([]byte, 8)
	binary.LittleEndian.PutUint32(onam[0:4], 0x00012345)
	binary.LittleEndian.PutUint32(onam[4:8], 0x00012346)

	model, err := (TES4Codec{}).Decode([]codec.Field{
		hedrField(1.7, 0, 0x800),
		{Tag: TagONAM, Data: onam},
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ids := model.(*TES4).Overrides()
	if len(ids) != 2 || ids[0] != 0x00012345 || ids[1] != 0x00012346 {
		t.Errorf("overrides: %v", ids)
	}
}

func TestAACT(t *testing.T) {
	t.Run("empty record", func(t *testing.T) {
		model, err := (AACTCodec{}).Decode(nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		a := model.(*AACT)
		if a.EditorID() != "" {
			t.Errorf("editor id of empty record: %q", a.EditorID())
		}
		if _, _, _, _, ok := a.Color(); ok {
			t.Error("color reported present on empty record")
		}
	})

	t.Run("with color", func(t *testing.T) {
		model, _ := (AACTCodec{}).Decode([]codec.Field{
			{Tag: TagEDID, Data: zbytes("ActionShieldChange")},
			{Tag: TagCNAM, Data: []byte{0x10, 0x20, 0x30, 0x00}},
		})
		a := model.(*AACT)
		if a.EditorID() != "ActionShieldChange" {
			t.Errorf("editor id: %q", a.EditorID())
		}
		r, g, b, _, ok := a.Color()
		if !ok || r != 0x10 || g != 0x20 || b != 0x30 {
			t.Errorf("color: %d %d %d ok=%v", r, g, b, ok)
		}

		a.SetColor(1, 2, 3, 4)
		r, g, b, u, _ := a.Color()
		if r != 1 || g != 2 || b != 3 || u != 4 {
			t.Errorf("after SetColor: %d %d %d %d", r, g, b, u)
		}
	})
}

func TestGMST(t *testing.T) {
	intData := []byte{0x2a, 0, 0, 0}
	floatData := make([]byte, 4)
	binary.LittleEndian.PutUint32(floatData, math.Float32bits(0.5))

	testCases := []struct {
		name   string
		edid   string
		data   []byte
		check  func(t *testing.T, g *GMST)
	}{
		{
			name: "integer setting",
			edid: "iMaxAttachedArrows",
			data: intData,
			check: func(t *testing.T, g *GMST) {
				if v, ok := g.Int(); !ok || v != 42 {
					t.Errorf("Int: %d ok=%v", v, ok)
				}
				if _, ok := g.Float(); ok {
					t.Error("Float succeeded on integer setting")
				}
			},
		},
		{
			name: "bool setting decodes as int",
			edid: "bUseFancyWater",
			data: []byte{1, 0, 0, 0},
			check: func(t *testing.T, g *GMST) {
				if v, ok := g.Int(); !ok || v != 1 {
					t.Errorf("Int: %d ok=%v", v, ok)
				}
			},
		},
		{
			name: "float setting",
			edid: "fJumpHeightMin",
			data: floatData,
			check: func(t *testing.T, g *GMST) {
				if v, ok := g.Float(); !ok || v != 0.5 {
					t.Errorf("Float: %f ok=%v", v, ok)
				}
			},
		},
		{
			name: "string setting",
			edid: "sOk",
			data: zbytes("OK"),
			check: func(t *testing.T, g *GMST) {
				if v, ok := g.Text(); !ok || v != "OK" {
					t.Errorf("String: %q ok=%v", v, ok)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := (GMSTCodec{}).Decode([]codec.Field{
				{Tag: TagEDID, Data: zbytes(tc.edid)},
				{Tag: TagDATA, Data: tc.data},
			})
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			tc.check(t, model.(*GMST))
		})
	}

	t.Run("missing EDID rejected", func(t *testing.T) {
		_, err := (GMSTCodec{}).Decode([]codec.Field{{Tag: TagDATA, Data: intData}})
		if err == nil {
			t.Error("expected error for GMST without EDID")
		}
	})
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	for _, tag := range []string{"TES4", "AACT", "GMST"} {
		if _, ok := reg.Lookup(codec.MakeTag(tag)); !ok {
			t.Errorf("%s not registered", tag)
		}
	}
	if _, ok := reg.Lookup(record.HeaderTag); !ok {
		t.Error("header record tag not registered")
	}
	if _, ok := reg.Lookup(codec.MakeTag("WEAP")); ok {
		t.Error("WEAP unexpectedly registered")
	}
}
