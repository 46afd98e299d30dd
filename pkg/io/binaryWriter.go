package io

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrDrained is returned on an attempt to use an already drained write buffer.
var ErrDrained = errors.New("buffer already drained")

// BinWriter is a convenient wrapper around a byte buffer and err object.
// Used to simplify error handling when writing a struct with many fields.
// Fields are written in protobuf wire format, zero values are omitted as
// proto3 requires, so fields must be written in ascending number order to
// get the canonical encoding.
type BinWriter struct {
	buf []byte
	Err error
}

// NewBufBinWriter makes a BinWriter with an empty byte buffer.
func NewBufBinWriter() *BinWriter {
	return &BinWriter{}
}

// WriteUint64 writes a varint-encoded field, zero is not written.
func (w *BinWriter) WriteUint64(num protowire.Number, v uint64) {
	if w.Err != nil || v == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

// WriteUint32 writes a varint-encoded uint32 field, zero is not written.
func (w *BinWriter) WriteUint32(num protowire.Number, v uint32) {
	w.WriteUint64(num, uint64(v))
}

// WriteString writes a length-prefixed string field, empty strings are not
// written.
func (w *BinWriter) WriteString(num protowire.Number, s string) {
	if w.Err != nil || len(s) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, s)
}

// WriteVarBytes writes a length-prefixed byte field, empty slices are not
// written.
func (w *BinWriter) WriteVarBytes(num protowire.Number, b []byte) {
	if w.Err != nil || len(b) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, b)
}

// WriteMessage writes s as an embedded message field. Unlike scalars it's
// written even if s encodes to nothing, nil s is skipped.
func (w *BinWriter) WriteMessage(num protowire.Number, s Serializable) {
	if w.Err != nil || s == nil {
		return
	}
	sub := NewBufBinWriter()
	s.EncodeBinary(sub)
	if sub.Err != nil {
		w.Err = sub.Err
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, sub.buf)
}

// Bytes returns the resulting buffer and makes future writes return an error.
func (w *BinWriter) Bytes() []byte {
	if w.Err != nil {
		return nil
	}
	b := w.buf
	w.buf = nil
	w.Err = ErrDrained
	return b
}

// Len returns the number of bytes written so far.
func (w *BinWriter) Len() int {
	return len(w.buf)
}

// Reset resets the state of the buffer, making it usable again. It can
// make buffer usage somewhat more efficient because you don't need to
// create it again. But beware, the buffer is gonna be the same as the one
// returned by Bytes(), so if you need that data after Reset() you have to copy
// it yourself.
func (w *BinWriter) Reset() {
	w.Err = nil
	w.buf = w.buf[:0]
}
