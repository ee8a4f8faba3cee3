package kinds

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

// TES4 field tags.
var (
	TagHEDR = codec.MakeTag("HEDR")
	TagSNAM = codec.MakeTag("SNAM")
	TagMAST = codec.MakeTag("MAST")
	TagONAM = codec.MakeTag("ONAM")
	TagINTV = codec.MakeTag("INTV")
	TagINCC = codec.MakeTag("INCC")
)

const hedrSize = 12

// FileHeader is the decoded HEDR field: plugin format version, count of
// records and groups in the file, and the next available object id.
type FileHeader struct {
	Version      float32
	RecordCount  uint32
	NextObjectID uint32
}

// Master is one MAST/DATA pair from the header record's master list.
// Data is unused by the engine but carried for fidelity.
type Master struct {
	Name string
	Data uint64
}

// TES4 is the plugin header record: file metadata and the master list.
type TES4 struct {
	base
}

// Header decodes the HEDR field. Decode guarantees its presence and size.
func (t *TES4) Header() FileHeader {
	b := t.fields[fieldIndex(t.fields, TagHEDR)].Data
	return FileHeader{
		Version:      math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		RecordCount:  binary.LittleEndian.Uint32(b[4:8]),
		NextObjectID: binary.LittleEndian.Uint32(b[8:12]),
	}
}

// SetHeader rewrites the HEDR field in place.
func (t *TES4) SetHeader(h FileHeader) {
	b := make([]byte, hedrSize)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(h.Version))
	binary.LittleEndian.PutUint32(b[4:8], h.RecordCount)
	binary.LittleEndian.PutUint32(b[8:12], h.NextObjectID)
	t.setField(TagHEDR, b)
}

// Author returns the CNAM author string, or "" when absent.
func (t *TES4) Author() string {
	if i := fieldIndex(t.fields, TagCNAM); i >= 0 {
		return zstring(t.fields[i].Data)
	}
	return ""
}

// SetAuthor rewrites or adds the CNAM field.
func (t *TES4) SetAuthor(author string) {
	t.setField(TagCNAM, zbytes(author))
}

// Description returns the SNAM description string, or "" when absent.
func (t *TES4) Description() string {
	if i := fieldIndex(t.fields, TagSNAM); i >= 0 {
		return zstring(t.fields[i].Data)
	}
	return ""
}

// Masters returns the master-file list in file order. Each MAST field
// names a master; its companion DATA field (u64, always 0 in practice) is
// the next DATA following it, when present.
func (t *TES4) Masters() []Master {
	var masters []Master
	for i, f := range t.fields {
		if f.Tag != TagMAST {
			continue
		}
		m := Master{Name: zstring(f.Data)}
		if i+1 < len(t.fields) && t.fields[i+1].Tag == TagDATA && len(t.fields[i+1].Data) == 8 {
			m.Data = binary.LittleEndian.Uint64(t.fields[i+1].Data)
		}
		masters = append(masters, m)
	}
	return masters
}

// Overrides returns the ONAM form id list, used by update plugins to
// override records owned by masters.
func (t *TES4) Overrides() []uint32 {
	i := fieldIndex(t.fields, TagONAM)
	if i < 0 {
		return nil
	}
	b := t.fields[i].Data
	ids := make([]uint32, 0, len(b)/4)
	for off := 0; off+4 <= len(b); off += 4 {
		ids = append(ids, binary.LittleEndian.Uint32(b[off:off+4]))
	}
	return ids
}

// TES4Codec decodes the plugin header record.
type TES4Codec struct{}

func (TES4Codec) Name() string { return "File Header" }

func (TES4Codec) Decode(fields []codec.Field) (dispatch.Model, error) {
	i := fieldIndex(fields, TagHEDR)
	if i < 0 {
		return nil, fmt.Errorf("header record has no HEDR field")
	}
	if len(fields[i].Data) != hedrSize {
		return nil, fmt.Errorf("HEDR field is %d bytes, want %d", len(fields[i].Data), hedrSize)
	}
	return &TES4{base: base{fields: fields}}, nil
}
