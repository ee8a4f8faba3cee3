package record

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/tamriel-io/goesp/pkg/codec"
	"github.com/tamriel-io/goesp/pkg/dispatch"
)

// Parse decodes one record starting at the reader's position. The header
// declares the payload extent; a compressed payload is inflated before
// field chunking. The registry resolves the kind-specific model, falling
// back to opaque storage for unregistered tags.
func Parse(r *codec.Reader, reg *dispatch.Registry) (*Record, error) {
	start := r.Pos()

	tag, err := r.Tag()
	if err != nil {
		return nil, err
	}
	dataSize, err := r.U32()
	if err != nil {
		return nil, err
	}
	flags, err := r.U32()
	if err != nil {
		return nil, err
	}
	formID, err := r.U32()
	if err != nil {
		return nil, err
	}
	vcb, err := r.Bytes(4)
	if err != nil {
		return nil, err
	}
	version, err := r.U16()
	if err != nil {
		return nil, err
	}
	unknown, err := r.U16()
	if err != nil {
		return nil, err
	}

	payload, err := r.Bytes(int(dataSize))
	if err != nil {
		return nil, fmt.Errorf("record %s at offset %d: %w", tag, start, err)
	}

	rec := &Record{
		Tag:     tag,
		Flags:   Flags(flags),
		FormID:  formID,
		VC:      VersionControl{Day: vcb[0], Month: vcb[1], LastUser: vcb[2], CurrentUser: vcb[3]},
		Version: version,
		Unknown: unknown,
	}

	if rec.Flags.Compressed() {
		payload, err = inflate(payload, start)
		if err != nil {
			return nil, err
		}
	}

	rec.Fields, err = codec.DecodeFields(payload)
	if err != nil {
		return nil, fmt.Errorf("record %s at offset %d: %w", tag, start, err)
	}

	rec.Model, err = reg.Decode(tag, rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("record %s (%08X): %w", tag, formID, err)
	}
	return rec, nil
}

// EncodeTo appends the record's serialized bytes: header with recomputed
// declared size, then the (possibly recompressed) field-chunk payload.
func (r *Record) EncodeTo(w *codec.Writer) error {
	fields, err := r.EffectiveFields()
	if err != nil {
		return fmt.Errorf("record %s (%08X): %w", r.Tag, r.FormID, err)
	}

	pw := codec.NewWriter()
	if err := codec.EncodeFields(pw, fields); err != nil {
		return fmt.Errorf("record %s (%08X): %w", r.Tag, r.FormID, err)
	}
	payload := pw.Bytes()

	if r.Model != nil && r.Model.Size() != len(payload) {
		return fmt.Errorf("%w: record %s (%08X) model reports %d bytes, encoded %d",
			codec.ErrSizeInvariant, r.Tag, r.FormID, r.Model.Size(), len(payload))
	}

	if r.Flags.Compressed() {
		payload, err = deflate(payload)
		if err != nil {
			return err
		}
	}
	if len(payload) > int(^uint32(0)) {
		return fmt.Errorf("%w: record %s payload of %d bytes exceeds u32",
			codec.ErrSizeInvariant, r.Tag, len(payload))
	}

	w.Tag(r.Tag)
	w.U32(uint32(len(payload)))
	w.U32(uint32(r.Flags))
	w.U32(r.FormID)
	w.U8(r.VC.Day)
	w.U8(r.VC.Month)
	w.U8(r.VC.LastUser)
	w.U8(r.VC.CurrentUser)
	w.U16(r.Version)
	w.U16(r.Unknown)
	w.Raw(payload)
	return nil
}

// inflate unpacks a compressed record payload: a u32 decompressed length
// followed by a zlib stream. A malformed stream or a length mismatch is
// ErrDecompressionFailed; the input offset is reported for diagnostics.
func inflate(payload []byte, offset int) ([]byte, error) {
	pr := codec.NewReader(payload)
	want, err := pr.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: compressed record at offset %d lacks length prefix",
			codec.ErrDecompressionFailed, offset)
	}
	blob, err := pr.Bytes(pr.Remaining())
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: record at offset %d: %v",
			codec.ErrDecompressionFailed, offset, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: record at offset %d: %v",
			codec.ErrDecompressionFailed, offset, err)
	}
	if len(out) != int(want) {
		return nil, fmt.Errorf("%w: record at offset %d inflated to %d bytes, header says %d",
			codec.ErrDecompressionFailed, offset, len(out), want)
	}
	return out, nil
}

// deflate packs a field-chunk payload into the compressed wire form:
// u32 decompressed length, then the zlib stream.
func deflate(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return nil, fmt.Errorf("compressing record payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing record payload: %w", err)
	}

	w := codec.NewWriter()
	w.U32(uint32(len(payload)))
	w.Raw(buf.Bytes())
	return w.Bytes(), nil
}
