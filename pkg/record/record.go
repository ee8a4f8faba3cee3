// Package record implements the record layer of the plugin format: the
// fixed 24-byte header, the optionally zlib-compressed payload, and the
// bridge between raw field chunks and kind-specific models.
package record

import (
	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

// HeaderSize is the fixed record header length: tag(4) + data_size(4) +
// flags(4) + form_id(4) + version control(4) + version(2) + unknown(2).
const HeaderSize = 24

// HeaderTag is the type tag of the plugin header record.
var HeaderTag = codec.MakeTag("TES4")

// Record flag bits. Only Compressed and Deleted affect codec behavior;
// the rest are carried through untouched and named here for callers.
const (
	FlagMaster            uint32 = 0x00000001
	FlagDeleted           uint32 = 0x00000020
	FlagLocalized         uint32 = 0x00000080
	FlagPersistent        uint32 = 0x00000400
	FlagInitiallyDisabled uint32 = 0x00000800
	FlagIgnored           uint32 = 0x00001000
	FlagCompressed        uint32 = 0x00040000
)

// Flags is the record header flag word. Unknown bits round-trip verbatim.
type Flags uint32

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask uint32) bool {
	return uint32(f)&mask == mask
}

// Compressed reports whether the record payload is zlib-compressed.
func (f Flags) Compressed() bool {
	return f.Has(FlagCompressed)
}

// Deleted reports whether the record is marked deleted.
func (f Flags) Deleted() bool {
	return f.Has(FlagDeleted)
}

// VersionControl is the per-record editing metadata. Month 0 is December
// 2002; user IDs identify who has the record checked out.
type VersionControl struct {
	Day         uint8
	Month       uint8
	LastUser    uint8
	CurrentUser uint8
}

// Record is one game-object entry: header metadata plus an ordered field
// sequence. Fields always holds the decoded chunks; Model, when non-nil,
// is the kind-specific view produced by the registry and takes precedence
// on write so model mutations are serialized.
type Record struct {
	Tag     codec.Tag
	Flags   Flags
	FormID  uint32
	VC      VersionControl
	Version uint16
	Unknown uint16

	Fields []codec.Field
	Model  dispatch.Model
}

// EffectiveFields returns the field sequence the record serializes to:
// the model's encoding when a model is attached, the raw chunks
// otherwise.
func (r *Record) EffectiveFields() ([]codec.Field, error) {
	if r.Model != nil {
		return r.Model.EncodeFields()
	}
	return r.Fields, nil
}

// FieldByTag returns the first field with the given tag, or false when
// absent. Raw access like this is how unimplemented kinds are inspected.
func (r *Record) FieldByTag(tag codec.Tag) (codec.Field, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return codec.Field{}, false
}

// Opaque reports whether the record decoded through the opaque fallback
// rather than a kind-specific codec.
func (r *Record) Opaque() bool {
	_, ok := r.Model.(*dispatch.Opaque)
	return ok || r.Model == nil
}
