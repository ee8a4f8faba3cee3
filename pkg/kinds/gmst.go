package kinds

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

// GMST is a game setting: an editor id whose first character encodes the
// value type of the DATA field (b/i = integer, f = float, s = string).
type GMST struct {
	base
}

// EditorID returns the setting name. Decode guarantees its presence.
func (g *GMST) EditorID() string {
	return g.editorID()
}

func (g *GMST) data() []byte {
	if i := fieldIndex(g.fields, TagDATA); i >= 0 {
		return g.fields[i].Data
	}
	return nil
}

// Int returns the setting as an integer. ok is false when the name
// prefix or the DATA width disagrees.
func (g *GMST) Int() (v int32, ok bool) {
	name := g.EditorID()
	d := g.data()
	if len(name) == 0 || (name[0] != 'i' && name[0] != 'b') || len(d) != 4 {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(d)), true
}

// Float returns the setting as a float32.
func (g *GMST) Float() (v float32, ok bool) {
	name := g.EditorID()
	d := g.data()
	if len(name) == 0 || name[0] != 'f' || len(d) != 4 {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(d)), true
}

// Text returns the setting as a string. Unlocalized plugins store it
// as a zero-terminated string in DATA.
func (g *GMST) Text() (v string, ok bool) {
	name := g.EditorID()
	if len(name) == 0 || name[0] != 's' {
		return "", false
	}
	return zstring(g.data()), true
}

// SetInt rewrites the DATA field with an integer value.
func (g *GMST) SetInt(v int32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	g.setField(TagDATA, b)
}

// SetFloat rewrites the DATA field with a float value.
func (g *GMST) SetFloat(v float32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	g.setField(TagDATA, b)
}

// GMSTCodec decodes game setting records.
type GMSTCodec struct{}

func (GMSTCodec) Name() string { return "Game Setting" }

func (GMSTCodec) Decode(fields []codec.Field) (dispatch.Model, error) {
	if fieldIndex(fields, TagEDID) < 0 {
		return nil, fmt.Errorf("game setting has no EDID field")
	}
	return &GMST{base: base{fields: fields}}, nil
}
