package dispatch

import (
	"github.com/tamriel-io/goesp/pkg/codec"
)

// Opaque is the fallback model for record kinds without a registered
// codec: the raw field chunks, preserved verbatim.
type Opaque struct {
	fields []codec.Field
}

// NewOpaque wraps a field sequence in an opaque model.
func NewOpaque(fields []codec.Field) *Opaque {
	return &Opaque{fields: fields}
}

// RawFields exposes the stored chunks for callers that want to inspect
// an unimplemented kind by tag and bytes.
func (o *Opaque) RawFields() []codec.Field {
	return o.fields
}

func (o *Opaque) EncodeFields() ([]codec.Field, error) {
	return o.fields, nil
}

func (o *Opaque) Size() int {
	return codec.FieldsSize(o.fields)
}

type opaqueCodec struct{}

func (opaqueCodec) Name() string {
	return "Unknown"
}

func (opaqueCodec) Decode(fields []codec.Field) (Model, error) {
	return NewOpaque(fields), nil
}
