// Package codec provides the low-level binary primitives shared by the
// plugin file parser: a bounds-checked little-endian cursor over an
// in-memory buffer, and the subrecord (field) chunk codec.
//
// # Field Chunk Format
//
// A record's payload is a back-to-back stream of field chunks with no
// terminator; the caller supplies the exact payload slice and fields are
// consumed until it is exhausted:
//
//	[Tag(4)][Length(2)][Payload(Length)]
//
// Fields:
//   - Tag: 4-byte ASCII type code (e.g. "EDID", "DATA")
//   - Length: 16-bit payload length in bytes (little-endian)
//   - Payload: opaque bytes; interpretation belongs to record-kind codecs
//
// # Oversized Fields
//
// A payload longer than 65535 bytes cannot be described by the 16-bit
// inline length. The format bridges this with a sentinel field tagged
// "XXXX" whose 4-byte payload holds the true length of the field that
// immediately follows it. The follower's own inline length is
// meaningless and ignored on read: the game engine writes 0 there,
// some third-party tools write 0xFFFF, and this package accepts either
// while always writing 0. DecodeFields fuses the pair into a single
// logical Field carrying the full payload; EncodeFields splits
// oversized fields back out automatically.
//
// # Error Handling
//
// All errors wrap one of the sentinel values in this package
// (ErrUnexpectedEOF, ErrTruncatedField, ...) and carry the byte offset at
// which decoding failed. Structural errors are non-recoverable: once byte
// accounting is lost no subsequent offset can be trusted, so callers are
// expected to abort the enclosing parse.
package codec
