// Package index maintains a persistent form id index over parsed
// plugins. Records are keyed by form id for point lookups and by
// record tag for type scans; the backing store is a pebble database so
// large load orders survive restarts without reparsing.
package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/plugin"
	"github.com/tamriel-io/goesp/pkg/record"
)

// ErrNotFound is returned when a form id has no index entry.
var ErrNotFound = errors.New("form id not indexed")

// Key space layout. Form ids are encoded big-endian so iteration order
// matches numeric order.
const (
	prefixRecord = "r/"
	prefixTag    = "t/"
	prefixBuild  = "b/"
)

// Entry describes one indexed record: where it came from and enough
// header metadata to answer lookups without reopening the plugin.
type Entry struct {
	FormID   uint32 `json:"form_id"`
	Tag      string `json:"tag"`
	Plugin   string `json:"plugin"`
	EditorID string `json:"editor_id,omitempty"`
	Flags    uint32 `json:"flags,omitempty"`
}

// BuildInfo records one indexing run.
type BuildInfo struct {
	ID      string    `json:"id"`
	Plugin  string    `json:"plugin"`
	Records int       `json:"records"`
	Built   time.Time `json:"built"`
}

// Index is a pebble-backed form id index. Safe for concurrent readers;
// IndexPlugin serializes through pebble's batch commit.
type Index struct {
	db *pebble.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func recordKey(formID uint32) []byte {
	k := make([]byte, len(prefixRecord)+4)
	copy(k, prefixRecord)
	binary.BigEndian.PutUint32(k[len(prefixRecord):], formID)
	return k
}

func tagKey(tag string, formID uint32) []byte {
	k := make([]byte, 0, len(prefixTag)+len(tag)+5)
	k = append(k, prefixTag...)
	k = append(k, tag...)
	k = append(k, '/')
	k = binary.BigEndian.AppendUint32(k, formID)
	return k
}

// IndexPlugin walks every record of p and writes the index entries in
// one batch. Re-indexing the same plugin overwrites its entries; the
// header record is skipped since form id zero is not addressable.
func (ix *Index) IndexPlugin(name string, p *plugin.Plugin) (BuildInfo, error) {
	batch := ix.db.NewBatch()
	defer batch.Close()

	count := 0
	var werr error
	p.Walk(func(r *record.Record) {
		if werr != nil || r.Tag == record.HeaderTag {
			return
		}
		e := Entry{
			FormID:   r.FormID,
			Tag:      r.Tag.String(),
			Plugin:   name,
			EditorID: editorID(r),
			Flags:    uint32(r.Flags),
		}
		val, err := json.Marshal(e)
		if err != nil {
			werr = err
			return
		}
		if err := batch.Set(recordKey(r.FormID), val, nil); err != nil {
			werr = err
			return
		}
		if err := batch.Set(tagKey(e.Tag, r.FormID), nil, nil); err != nil {
			werr = err
			return
		}
		count++
	})
	if werr != nil {
		return BuildInfo{}, werr
	}

	info := BuildInfo{
		ID:      ksuid.New().String(),
		Plugin:  name,
		Records: count,
		Built:   time.Now().UTC(),
	}
	val, err := json.Marshal(info)
	if err != nil {
		return BuildInfo{}, err
	}
	if err := batch.Set([]byte(prefixBuild+info.ID), val, nil); err != nil {
		return BuildInfo{}, err
	}

	if err := ix.db.Apply(batch, pebble.NoSync); err != nil {
		return BuildInfo{}, err
	}
	return info, nil
}

// Lookup returns the entry for formID.
func (ix *Index) Lookup(formID uint32) (Entry, error) {
	val, closer, err := ix.db.Get(recordKey(formID))
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, fmt.Errorf("%w: %08X", ErrNotFound, formID)
	}
	if err != nil {
		return Entry{}, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ByTag returns every indexed entry with the given record tag, in form
// id order.
func (ix *Index) ByTag(tag string) ([]Entry, error) {
	lower := []byte(prefixTag + tag + "/")
	upper := []byte(prefixTag + tag + "0") // '0' sorts after '/'

	it, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var entries []Entry
	for it.First(); it.Valid(); it.Next() {
		key := it.Key()
		formID := binary.BigEndian.Uint32(key[len(key)-4:])
		e, err := ix.Lookup(formID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Builds returns the recorded indexing runs. KSUIDs sort by creation
// time, so the result is chronological.
func (ix *Index) Builds() ([]BuildInfo, error) {
	lower := []byte(prefixBuild)
	upper := []byte(prefixBuild[:1] + "0")

	it, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var builds []BuildInfo
	for it.First(); it.Valid(); it.Next() {
		var b BuildInfo
		if err := json.Unmarshal(it.Value(), &b); err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return builds, nil
}

func editorID(r *record.Record) string {
	type namer interface{ EditorID() string }
	if m, ok := r.Model.(namer); ok {
		return m.EditorID()
	}
	f, ok := r.FieldByTag(codec.MakeTag("EDID"))
	if !ok || len(f.Data) == 0 {
		return ""
	}
	d := f.Data
	if d[len(d)-1] == 0 {
		d = d[:len(d)-1]
	}
	return string(d)
}
