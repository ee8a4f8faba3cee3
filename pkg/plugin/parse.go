package plugin

import (
	"fmt"
	"sync"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/group"
	"github.com/tamriel-io/goesp/pkg/kinds"
	"github.com/tamriel-io/goesp/pkg/record"
)

// Parse decodes a whole plugin file from data. The header record must
// come first; everything after it is a sequence of self-delimiting
// top-level groups consumed until the input is exhausted. Structural
// errors abort the parse; there is no partial document.
func Parse(data []byte, opts ...Option) (*Plugin, error) {
	o := Options{Registry: kinds.DefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}

	r := codec.NewReader(data)
	head, err := r.Peek(4)
	if err != nil {
		return nil, err
	}
	if codec.Tag(([4]byte)(head[0:4])) != record.HeaderTag {
		return nil, fmt.Errorf("%w: found %q", ErrNotPlugin, head)
	}

	header, err := record.Parse(r, o.Registry)
	if err != nil {
		return nil, err
	}
	p := &Plugin{Header: header}

	if o.Parallel > 1 {
		p.Groups, err = parseGroupsParallel(r, &o)
	} else {
		p.Groups, err = parseGroups(r, &o)
	}
	if err != nil {
		return nil, err
	}

	if o.Strict {
		if err := validateStrict(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func parseGroups(r *codec.Reader, o *Options) ([]*group.Group, error) {
	var groups []*group.Group
	for r.Remaining() > 0 {
		if !group.IsGroupAt(r) {
			return nil, fmt.Errorf("top-level entry at offset %d is not a group", r.Pos())
		}
		g, err := group.Parse(r, o.Registry)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// parseGroupsParallel exploits the self-delimiting top-level layout:
// each group's byte range is known from its header alone, so the ranges
// are sliced out first and decoded concurrently. Output order and
// content match the sequential path exactly.
func parseGroupsParallel(r *codec.Reader, o *Options) ([]*group.Group, error) {
	var ranges [][]byte
	for r.Remaining() > 0 {
		if !group.IsGroupAt(r) {
			return nil, fmt.Errorf("top-level entry at offset %d is not a group", r.Pos())
		}
		hdr, err := r.Peek(8)
		if err != nil {
			return nil, err
		}
		size := int(uint32(hdr[4]) | uint32(hdr[5])<<8 | uint32(hdr[6])<<16 | uint32(hdr[7])<<24)
		if size < group.HeaderSize {
			return nil, fmt.Errorf("%w: group at offset %d declares %d bytes",
				codec.ErrMalformedGroupSize, r.Pos(), size)
		}
		body, err := r.Bytes(size)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, body)
	}

	groups := make([]*group.Group, len(ranges))
	errs := make([]error, len(ranges))
	sem := make(chan struct{}, o.Parallel)
	var wg sync.WaitGroup
	for i, body := range ranges {
		wg.Add(1)
		go func(i int, body []byte) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			groups[i], errs[i] = group.Parse(codec.NewReader(body), o.Registry)
		}(i, body)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func validateStrict(p *Plugin) error {
	for _, g := range p.Groups {
		if err := g.CheckTopLabel(); err != nil {
			return fmt.Errorf("strict: %w", err)
		}
	}
	return nil
}
