package group

import (
	"fmt"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
	"github.com/tamriel-io/goesp/pkg/record"
)

// IsGroupAt reports whether the reader is positioned at a group header.
func IsGroupAt(r *codec.Reader) bool {
	b, err := r.Peek(4)
	if err != nil {
		return false
	}
	return codec.Tag(([4]byte)(b[0:4])) == Tag
}

// parseHeader consumes a 24-byte group header and returns the group shell
// plus its body length (declared size minus the header).
func parseHeader(r *codec.Reader) (*Group, int, error) {
	start := r.Pos()
	tag, err := r.Tag()
	if err != nil {
		return nil, 0, err
	}
	if tag != Tag {
		return nil, 0, fmt.Errorf("%w: expected group marker at offset %d, found %q",
			codec.ErrMalformedGroupSize, start, tag)
	}
	size, err := r.U32()
	if err != nil {
		return nil, 0, err
	}
	if size < HeaderSize {
		return nil, 0, fmt.Errorf("%w: group at offset %d declares %d bytes, header alone is %d",
			codec.ErrMalformedGroupSize, start, size, HeaderSize)
	}
	label, err := r.Bytes(4)
	if err != nil {
		return nil, 0, err
	}
	gtype, err := r.I32()
	if err != nil {
		return nil, 0, err
	}
	vcb, err := r.Bytes(4)
	if err != nil {
		return nil, 0, err
	}
	unknown, err := r.U32()
	if err != nil {
		return nil, 0, err
	}

	g := &Group{
		Type:    Type(gtype),
		VC:      record.VersionControl{Day: vcb[0], Month: vcb[1], LastUser: vcb[2], CurrentUser: vcb[3]},
		Unknown: unknown,
	}
	copy(g.Label[:], label)
	return g, int(size) - HeaderSize, nil
}

// frame is one open group during descent: the group being filled and the
// byte budget its remaining children may consume.
type frame struct {
	g         *Group
	remaining int
}

// Parse decodes one group, including all nested records and groups, from
// the reader's position. Descent is iterative: a stack of remaining-byte
// budgets replaces call recursion, so block/sub-block hierarchies of any
// depth parse in constant stack space. A child consuming past its
// parent's budget is ErrMalformedGroupSize; byte accounting is lost at
// that point and the whole parse aborts.
func Parse(r *codec.Reader, reg *dispatch.Registry) (*Group, error) {
	root, body, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	if body > r.Remaining() {
		return nil, fmt.Errorf("%w at offset %d: group body wants %d bytes, %d remain",
			codec.ErrUnexpectedEOF, r.Pos(), body, r.Remaining())
	}

	stack := []frame{{g: root, remaining: body}}
	for {
		top := &stack[len(stack)-1]

		if top.remaining == 0 {
			done := top.g
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return done, nil
			}
			parent := &stack[len(stack)-1]
			parent.g.Entries = append(parent.g.Entries, Entry{Group: done})
			continue
		}
		if top.remaining < record.HeaderSize {
			return nil, fmt.Errorf("%w at offset %d: %d trailing bytes cannot hold a child",
				codec.ErrMalformedGroupSize, r.Pos(), top.remaining)
		}

		if IsGroupAt(r) {
			start := r.Pos()
			child, childBody, err := parseHeader(r)
			if err != nil {
				return nil, err
			}
			total := HeaderSize + childBody
			if total > top.remaining {
				return nil, fmt.Errorf("%w at offset %d: nested group of %d bytes exceeds budget %d",
					codec.ErrMalformedGroupSize, start, total, top.remaining)
			}
			top.remaining -= total
			stack = append(stack, frame{g: child, remaining: childBody})
			continue
		}

		start := r.Pos()
		rec, err := record.Parse(r, reg)
		if err != nil {
			return nil, err
		}
		consumed := r.Pos() - start
		if consumed > top.remaining {
			return nil, fmt.Errorf("%w at offset %d: record %s of %d bytes exceeds budget %d",
				codec.ErrMalformedGroupSize, start, rec.Tag, consumed, top.remaining)
		}
		top.remaining -= consumed
		top.g.Entries = append(top.g.Entries, Entry{Record: rec})
	}
}

// EncodeTo appends the group's serialized bytes. Children are emitted
// first in place, then the declared size is patched over its placeholder
// once the subtree length is known.
func (g *Group) EncodeTo(w *codec.Writer) error {
	start := w.Len()
	w.Tag(Tag)
	sizeOff := w.Len()
	w.U32(0) // patched below
	w.Raw(g.Label[:])
	w.I32(int32(g.Type))
	w.U8(g.VC.Day)
	w.U8(g.VC.Month)
	w.U8(g.VC.LastUser)
	w.U8(g.VC.CurrentUser)
	w.U32(g.Unknown)

	for _, e := range g.Entries {
		switch {
		case e.Record != nil:
			if err := e.Record.EncodeTo(w); err != nil {
				return err
			}
		case e.Group != nil:
			if err := e.Group.EncodeTo(w); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: empty group entry", codec.ErrSizeInvariant)
		}
	}

	total := w.Len() - start
	if total > int(^uint32(0)) {
		return fmt.Errorf("%w: group of %d bytes exceeds u32", codec.ErrSizeInvariant, total)
	}
	w.PatchU32(sizeOff, uint32(total))
	return nil
}
