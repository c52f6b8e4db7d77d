// Package lz4 implements the LZ4 parquet compression codec using the raw
// block format.
package lz4

import (
	"github.com/dobesv/parquets/format"
	"github.com/pierrec/lz4/v4"
)

type Level = lz4.CompressionLevel

const (
	Fast   = lz4.Fast
	Level1 = lz4.Level1
	Level2 = lz4.Level2
	Level3 = lz4.Level3
	Level4 = lz4.Level4
	Level5 = lz4.Level5
	Level6 = lz4.Level6
	Level7 = lz4.Level7
	Level8 = lz4.Level8
	Level9 = lz4.Level9
)

const (
	DefaultLevel = Fast
)

type Codec struct {
	Level Level
}

func (c *Codec) String() string {
	return "LZ4"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Lz4
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	dst = reserve(dst, lz4.CompressBlockBound(len(src)))

	var (
		n   int
		err error
	)
	if c.Level == Fast {
		compressor := lz4.Compressor{}
		n, err = compressor.CompressBlock(src, dst)
	} else {
		compressor := lz4.CompressorHC{Level: c.Level}
		n, err = compressor.CompressBlock(src, dst)
	}
	if err != nil {
		return dst[:0], err
	}
	if n == 0 {
		// The block compressors return zero when the input is not
		// compressible. Parquet has no marker for stored blocks, so emit a
		// literal-only lz4 block instead.
		return appendLiteralBlock(dst[:0], src), nil
	}
	return dst[:n], nil
}

// appendLiteralBlock appends a valid lz4 block holding src as one sequence
// of literals with no match.
func appendLiteralBlock(dst, src []byte) []byte {
	n := len(src)
	if n >= 15 {
		dst = append(dst, 0xF0)
		for v := n - 15; ; v -= 255 {
			if v < 255 {
				dst = append(dst, byte(v))
				break
			}
			dst = append(dst, 255)
		}
	} else {
		dst = append(dst, byte(n)<<4)
	}
	return append(dst, src...)
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	for {
		dst = reserve(dst, len(src)*4)
		n, err := lz4.UncompressBlock(src, dst)
		if err == nil {
			return dst[:n], nil
		}
		if cap(dst) >= 64*len(src) {
			return dst[:0], err
		}
		dst = make([]byte, 0, 2*cap(dst))
	}
}

func reserve(b []byte, size int) []byte {
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:cap(b)]
}
