package io

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// BinReader is a convenient wrapper around a byte buffer and err object.
// Used to simplify error handling when reading into a struct with many fields.
// Typical usage is a loop over ReadField with a switch on the field number
// calling the appropriate Read* method or Skip.
type BinReader struct {
	buf []byte
	num protowire.Number
	typ protowire.Type
	Err error
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{buf: b}
}

// ReadField reads the next field tag. It returns false when there is no more
// data or an error occurred.
func (r *BinReader) ReadField() (protowire.Number, bool) {
	if r.Err != nil || len(r.buf) == 0 {
		return 0, false
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		r.Err = fmt.Errorf("bad field tag: %w", protowire.ParseError(n))
		return 0, false
	}
	r.buf = r.buf[n:]
	r.num, r.typ = num, typ
	return num, true
}

func (r *BinReader) expect(typ protowire.Type) bool {
	if r.Err != nil {
		return false
	}
	if r.typ != typ {
		r.Err = fmt.Errorf("field %d: unexpected wire type %d (expected %d)", r.num, r.typ, typ)
		return false
	}
	return true
}

// ReadUint64 reads the value of a varint field.
func (r *BinReader) ReadUint64() uint64 {
	if !r.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		r.Err = fmt.Errorf("field %d: %w", r.num, protowire.ParseError(n))
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

// ReadUint32 reads the value of a varint field that must fit into uint32.
func (r *BinReader) ReadUint32() uint32 {
	v := r.ReadUint64()
	if v > 0xFFFFFFFF {
		r.Err = fmt.Errorf("field %d: value %d overflows uint32", r.num, v)
		return 0
	}
	return uint32(v)
}

// ReadVarBytes reads the value of a length-prefixed field. The result is a
// copy, so it's not affected by the changes in the source buffer.
func (r *BinReader) ReadVarBytes() []byte {
	if !r.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		r.Err = fmt.Errorf("field %d: %w", r.num, protowire.ParseError(n))
		return nil
	}
	r.buf = r.buf[n:]
	return append([]byte(nil), v...)
}

// ReadString reads the value of a length-prefixed string field.
func (r *BinReader) ReadString() string {
	return string(r.ReadVarBytes())
}

// ReadMessage decodes the value of an embedded message field into s.
func (r *BinReader) ReadMessage(s Serializable) {
	b := r.ReadVarBytes()
	if r.Err != nil {
		return
	}
	sub := NewBinReaderFromBuf(b)
	s.DecodeBinary(sub)
	if sub.Err != nil {
		r.Err = fmt.Errorf("field %d: %w", r.num, sub.Err)
	}
}

// Skip skips the value of the current field, it's used for unknown fields.
func (r *BinReader) Skip() {
	if r.Err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.buf)
	if n < 0 {
		r.Err = fmt.Errorf("field %d: %w", r.num, protowire.ParseError(n))
		return
	}
	r.buf = r.buf[n:]
}
