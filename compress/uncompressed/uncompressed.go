// Package uncompressed provides implementations of the compression codec
// interfaces as pass-through without any compression.
package uncompressed

import (
	"github.com/dobesv/parquets/format"
)

type Codec struct{}

func (c *Codec) String() string {
	return "UNCOMPRESSED"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Uncompressed
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
