package kinds

import (
	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

// AACT is an action record: an editor id and an optional display color.
// Empty AACT records exist in shipped masters.
type AACT struct {
	base
}

// EditorID returns the EDID string, or "" when absent.
func (a *AACT) EditorID() string {
	return a.editorID()
}

// Color returns the CNAM color as r, g, b plus the unused fourth byte.
// ok is false when the field is absent or malformed.
func (a *AACT) Color() (r, g, b, u uint8, ok bool) {
	i := fieldIndex(a.fields, TagCNAM)
	if i < 0 || len(a.fields[i].Data) != 4 {
		return 0, 0, 0, 0, false
	}
	d := a.fields[i].Data
	return d[0], d[1], d[2], d[3], true
}

// SetColor rewrites or adds the CNAM color field.
func (a *AACT) SetColor(r, g, b, u uint8) {
	a.setField(TagCNAM, []byte{r, g, b, u})
}

// AACTCodec decodes action records.
type AACTCodec struct{}

func (AACTCodec) Name() string { return "Action" }

func (AACTCodec) Decode(fields []codec.Field) (dispatch.Model, error) {
	return &AACT{base: base{fields: fields}}, nil
}
