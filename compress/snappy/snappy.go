// Package snappy implements the SNAPPY parquet compression codec.
package snappy

import (
	"github.com/dobesv/parquets/format"
	"github.com/klauspost/compress/snappy"
)

// Parquet requires the raw snappy block encoding, not the framing protocol
// implemented by snappy.Reader and snappy.Writer, so the codec goes through
// snappy.Encode and snappy.Decode.

type Codec struct{}

func (c *Codec) String() string {
	return "SNAPPY"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Snappy
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:cap(dst)], src), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst[:cap(dst)], src)
}
