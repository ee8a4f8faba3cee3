// Package group implements the structural container layer of the plugin
// format. Groups have no child count or terminator, only a declared total
// byte length, so parsing tracks a stack of remaining-byte budgets and
// writing fills sizes in bottom-up.
package group

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/record"
)

// HeaderSize is the fixed group header length: "GRUP"(4) + size(4) +
// label(4) + type(4) + version control(4) + unknown(4). The declared size
// includes the header itself.
const HeaderSize = 24

// Tag is the container marker beginning every group header.
var Tag = codec.MakeTag("GRUP")

// Type discriminates what a group contains and how its label is read.
type Type int32

const (
	// Top groups cluster all records of one type; label = record tag.
	Top Type = 0
	// WorldChildren: label = parent WRLD form id.
	WorldChildren Type = 1
	// InteriorCellBlock: label = block number.
	InteriorCellBlock Type = 2
	// InteriorCellSubBlock: label = sub-block number.
	InteriorCellSubBlock Type = 3
	// ExteriorCellBlock: label = grid coordinates, Y before X.
	ExteriorCellBlock Type = 4
	// ExteriorCellSubBlock: label = grid coordinates, Y before X.
	ExteriorCellSubBlock Type = 5
	// CellChildren: label = parent CELL form id.
	CellChildren Type = 6
	// TopicChildren: label = parent DIAL form id.
	TopicChildren Type = 7
	// CellPersistentChildren: label = owning CELL form id.
	CellPersistentChildren Type = 8
	// CellTemporaryChildren: label = owning CELL form id.
	CellTemporaryChildren Type = 9
	// CellVisibleDistantChildren: label = owning CELL form id.
	CellVisibleDistantChildren Type = 10
)

func (t Type) String() string {
	switch t {
	case Top:
		return "Top"
	case WorldChildren:
		return "WorldChildren"
	case InteriorCellBlock:
		return "InteriorCellBlock"
	case InteriorCellSubBlock:
		return "InteriorCellSubBlock"
	case ExteriorCellBlock:
		return "ExteriorCellBlock"
	case ExteriorCellSubBlock:
		return "ExteriorCellSubBlock"
	case CellChildren:
		return "CellChildren"
	case TopicChildren:
		return "TopicChildren"
	case CellPersistentChildren:
		return "CellPersistentChildren"
	case CellTemporaryChildren:
		return "CellTemporaryChildren"
	case CellVisibleDistantChildren:
		return "CellVisibleDistantChildren"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// Entry is one child of a group: exactly one of Record or Group is set.
type Entry struct {
	Record *record.Record
	Group  *Group
}

// Group is a structural container of records and nested groups. Label is
// kept as the raw header bytes; the typed accessors interpret it per
// Type, and round-trips reproduce it exactly even when its semantics are
// never examined.
type Group struct {
	Type    Type
	Label   [4]byte
	VC      record.VersionControl
	Unknown uint32

	Entries []Entry
}

// NewTop returns an empty Top group labeled with the record tag it will
// contain.
func NewTop(tag codec.Tag) *Group {
	g := &Group{Type: Top}
	copy(g.Label[:], tag[:])
	return g
}

// RecordTag interprets the label of a Top group as the contained record
// type tag.
func (g *Group) RecordTag() codec.Tag {
	var t codec.Tag
	copy(t[:], g.Label[:])
	return t
}

// ParentFormID interprets the label as a parent or owning form id. Valid
// for the children group types (WorldChildren, CellChildren,
// TopicChildren, and the three cell children partitions).
func (g *Group) ParentFormID() uint32 {
	return binary.LittleEndian.Uint32(g.Label[:])
}

// BlockNumber interprets the label as an interior cell block or
// sub-block number.
func (g *Group) BlockNumber() int32 {
	return int32(binary.LittleEndian.Uint32(g.Label[:]))
}

// GridCoords interprets the label as exterior cell grid coordinates.
// The format stores Y before X.
func (g *Group) GridCoords() (y, x int16) {
	y = int16(binary.LittleEndian.Uint16(g.Label[0:2]))
	x = int16(binary.LittleEndian.Uint16(g.Label[2:4]))
	return y, x
}

// LabelString renders the label the way the group type defines it:
// record tag for Top groups, block number, grid coordinates, or a hex
// parent form id for everything else, including unknown types.
func (g *Group) LabelString() string {
	switch g.Type {
	case Top:
		return g.RecordTag().String()
	case InteriorCellBlock, InteriorCellSubBlock:
		return strconv.Itoa(int(g.BlockNumber()))
	case ExteriorCellBlock, ExteriorCellSubBlock:
		y, x := g.GridCoords()
		return fmt.Sprintf("%d,%d", y, x)
	default:
		return fmt.Sprintf("%08X", g.ParentFormID())
	}
}

// CheckTopLabel verifies that every record directly inside a Top group
// carries the tag the label declares. Used by strict parsing; permissive
// parsing skips it and the raw label round-trips regardless.
func (g *Group) CheckTopLabel() error {
	if g.Type != Top {
		return nil
	}
	want := g.RecordTag()
	for _, e := range g.Entries {
		if e.Record != nil && e.Record.Tag != want {
			return fmt.Errorf("top group %q contains record %s (%08X)",
				want, e.Record.Tag, e.Record.FormID)
		}
	}
	return nil
}

// Records returns the group's immediate record children, skipping nested
// groups.
func (g *Group) Records() []*record.Record {
	var recs []*record.Record
	for _, e := range g.Entries {
		if e.Record != nil {
			recs = append(recs, e.Record)
		}
	}
	return recs
}

// Walk visits every record in the subtree in file order.
func (g *Group) Walk(fn func(*record.Record)) {
	for _, e := range g.Entries {
		switch {
		case e.Record != nil:
			fn(e.Record)
		case e.Group != nil:
			e.Group.Walk(fn)
		}
	}
}
