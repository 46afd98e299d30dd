package io

// Serializable defines the binary encoding/decoding interface. Types
// implementing it are encoded as protobuf messages, errors are reported via
// the Err field of the reader/writer.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}

// GetBytes returns the canonical binary representation of s.
func GetBytes(s Serializable) ([]byte, error) {
	w := NewBufBinWriter()
	s.EncodeBinary(w)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes decodes s from b, it fails if b has any trailing garbage that
// can't be parsed as a protobuf field.
func FromBytes(s Serializable, b []byte) error {
	r := NewBinReaderFromBuf(b)
	s.DecodeBinary(r)
	return r.Err
}
