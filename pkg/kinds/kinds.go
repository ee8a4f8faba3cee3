// Package kinds provides codecs for the record kinds the library
// understands and a DefaultRegistry wiring them up. Coverage is
// deliberately partial: every kind not here still round-trips through the
// opaque fallback. Models keep the original field order and unknown
// fields verbatim; typed accessors read and write in place, so a decoded
// record re-serializes byte-identically until it is actually mutated.
package kinds

import (
	"bytes"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
	"github.com/tamriel-io/goesp/pkg/record"
)

// Well-known field tags shared across record kinds.
var (
	TagEDID = codec.MakeTag("EDID")
	TagCNAM = codec.MakeTag("CNAM")
	TagDATA = codec.MakeTag("DATA")
	TagFULL = codec.MakeTag("FULL")
)

// DefaultRegistry returns a registry with every kind codec this package
// implements. Callers needing different coverage build their own.
func DefaultRegistry() *dispatch.Registry {
	reg := dispatch.NewRegistry()
	reg.Register(record.HeaderTag, TES4Codec{})
	reg.Register(codec.MakeTag("AACT"), AACTCodec{})
	reg.Register(codec.MakeTag("GMST"), GMSTCodec{})
	return reg
}

// zstring decodes a zero-terminated byte string, tolerating a missing
// terminator. Bytes are windows-1252; callers treat them as raw.
func zstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// zbytes encodes a string with its zero terminator.
func zbytes(s string) []byte {
	return append([]byte(s), 0)
}

// fieldIndex locates the first field with tag, or -1.
func fieldIndex(fields []codec.Field, tag codec.Tag) int {
	for i, f := range fields {
		if f.Tag == tag {
			return i
		}
	}
	return -1
}

// base carries the shared model plumbing: the authoritative ordered field
// slice that EncodeFields hands back unchanged unless a setter rewrote a
// slot.
type base struct {
	fields []codec.Field
}

func (b *base) EncodeFields() ([]codec.Field, error) {
	return b.fields, nil
}

func (b *base) Size() int {
	return codec.FieldsSize(b.fields)
}

// editorID reads the EDID field as a string, or "" when absent.
func (b *base) editorID() string {
	if i := fieldIndex(b.fields, TagEDID); i >= 0 {
		return zstring(b.fields[i].Data)
	}
	return ""
}

// setField rewrites the payload of the first field with tag, appending a
// new field when none exists.
func (b *base) setField(tag codec.Tag, data []byte) {
	if i := fieldIndex(b.fields, tag); i >= 0 {
		b.fields[i].Data = data
		return
	}
	b.fields = append(b.fields, codec.Field{Tag: tag, Data: data})
}
