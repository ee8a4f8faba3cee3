// Package plugin ties the codec layers together into whole-file
// operations: parse a byte buffer into a document tree, edit it, and
// write it back out byte-exactly. File I/O stays with the caller; the
// package only ever sees byte slices.
package plugin

import (
	"errors"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
	"github.com/tamriel-io/goesp/pkg/group"
	"github.com/tamriel-io/goesp/pkg/kinds"
	"github.com/tamriel-io/goesp/pkg/record"
)

// ErrNotPlugin is returned when the input does not begin with a TES4
// header record.
var ErrNotPlugin = errors.New("data does not start with a TES4 header record")

// Plugin is a parsed plugin file: the header record followed by the
// top-level groups in file order. The tree owns all records and groups;
// form id references between records are lookups, never ownership.
type Plugin struct {
	Header *record.Record
	Groups []*group.Group
}

// Options control parsing. The zero value is not used directly; Parse
// applies defaults first.
type Options struct {
	// Registry resolves record kinds. Defaults to kinds.DefaultRegistry.
	Registry *dispatch.Registry

	// Strict rejects Top groups whose records do not match the label.
	// The default is permissive: labels round-trip unvalidated.
	Strict bool

	// Parallel, when above 1, parses independent top-level groups on
	// that many goroutines. Results are identical to sequential parsing.
	Parallel int
}

// Option mutates Options.
type Option func(*Options)

// WithRegistry supplies the dispatch table used to decode record kinds.
func WithRegistry(reg *dispatch.Registry) Option {
	return func(o *Options) { o.Registry = reg }
}

// WithStrict enables Top-group label validation.
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// WithParallel parses top-level groups on up to n goroutines.
func WithParallel(n int) Option {
	return func(o *Options) { o.Parallel = n }
}

// Write serializes the document: header record first, then each
// top-level group, sizes recomputed bottom-up.
func (p *Plugin) Write() ([]byte, error) {
	w := codec.NewWriter()
	if err := p.Header.EncodeTo(w); err != nil {
		return nil, err
	}
	for _, g := range p.Groups {
		if err := g.EncodeTo(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// Walk visits the header record and then every record in every group, in
// file order.
func (p *Plugin) Walk(fn func(*record.Record)) {
	fn(p.Header)
	for _, g := range p.Groups {
		g.Walk(fn)
	}
}

// RecordsByTag collects every record of the given type across the tree.
func (p *Plugin) RecordsByTag(tag codec.Tag) []*record.Record {
	var recs []*record.Record
	p.Walk(func(r *record.Record) {
		if r.Tag == tag {
			recs = append(recs, r)
		}
	})
	return recs
}

// FindRecord returns the record defining formID, or nil. The document
// invariant is that its own definitions are unique; overrides of
// master-owned ids are outside this package's scope.
func (p *Plugin) FindRecord(formID uint32) *record.Record {
	var found *record.Record
	p.Walk(func(r *record.Record) {
		if found == nil && r.FormID == formID {
			found = r
		}
	})
	return found
}

// TopGroup returns the top-level Top group labeled with tag, or nil.
func (p *Plugin) TopGroup(tag codec.Tag) *group.Group {
	for _, g := range p.Groups {
		if g.Type == group.Top && g.RecordTag() == tag {
			return g
		}
	}
	return nil
}

// FileHeader returns the typed view of the header record when it decoded
// through the TES4 codec, or nil.
func (p *Plugin) FileHeader() *kinds.TES4 {
	if t, ok := p.Header.Model.(*kinds.TES4); ok {
		return t
	}
	return nil
}
