// Package dispatch maps record type tags to kind-specific codecs.
//
// Registries are explicit values supplied at parse and write time; there
// is no ambient global table. A lookup miss never fails: it resolves to a
// built-in opaque codec that stores the raw field chunks verbatim, so
// every record kind the system does not understand still round-trips
// byte-exactly. Unknown tags are informational, not errors.
package dispatch

import (
	"github.com/tamriel-io/goesp/pkg/codec"
)

// Model is the decoded, kind-specific view of a record's payload. A Model
// must be able to reproduce its field-chunk sequence so the record can be
// re-serialized; Size reports the serialized length of that sequence.
type Model interface {
	// EncodeFields returns the record's field chunks in write order.
	EncodeFields() ([]codec.Field, error)

	// Size returns the serialized byte length of the field-chunk stream,
	// before any record-level compression.
	Size() int
}

// Codec decodes a record kind's field chunks into a Model. Implementations
// must tolerate fields they do not recognize and carry them through
// unchanged; dropping unknown fields would break round-tripping.
type Codec interface {
	// Name is the human-readable kind name, e.g. "Game Setting".
	Name() string

	// Decode builds the kind-specific model from the record's fields.
	Decode(fields []codec.Field) (Model, error)
}

// Registry maps type tags to codecs. The zero value is not usable; call
// NewRegistry. Registries are immutable after setup from the caller's
// perspective: Register during concurrent Lookup is not supported.
type Registry struct {
	codecs map[codec.Tag]Codec
}

// NewRegistry returns an empty registry. Every lookup on it resolves to
// the opaque fallback.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[codec.Tag]Codec)}
}

// Register binds a codec to a record type tag, replacing any previous
// binding.
func (r *Registry) Register(tag codec.Tag, c Codec) {
	r.codecs[tag] = c
}

// Lookup returns the codec for tag. The second result reports whether a
// kind-specific codec was registered; when false the returned codec is
// the opaque fallback, which is always valid to use.
func (r *Registry) Lookup(tag codec.Tag) (Codec, bool) {
	if r != nil {
		if c, ok := r.codecs[tag]; ok {
			return c, true
		}
	}
	return opaqueCodec{}, false
}

// Decode resolves tag and decodes fields with the resulting codec.
func (r *Registry) Decode(tag codec.Tag, fields []codec.Field) (Model, error) {
	c, _ := r.Lookup(tag)
	return c.Decode(fields)
}
