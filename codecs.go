package parquets

import (
	"fmt"

	"github.com/dobesv/parquets/compress"
	"github.com/dobesv/parquets/compress/brotli"
	"github.com/dobesv/parquets/compress/gzip"
	"github.com/dobesv/parquets/compress/lz4"
	"github.com/dobesv/parquets/compress/snappy"
	"github.com/dobesv/parquets/compress/uncompressed"
	"github.com/dobesv/parquets/compress/zstd"
	"github.com/dobesv/parquets/format"
)

var (
	// Uncompressed is a parquet compression codec writing pages as-is.
	Uncompressed compress.Codec = &uncompressed.Codec{}

	// Snappy is the SNAPPY parquet compression codec.
	Snappy compress.Codec = &snappy.Codec{}

	// Gzip is the GZIP parquet compression codec.
	Gzip compress.Codec = &gzip.Codec{Level: gzip.DefaultCompression}

	// Brotli is the BROTLI parquet compression codec.
	Brotli compress.Codec = &brotli.Codec{Quality: brotli.DefaultQuality, LGWin: brotli.DefaultLGWin}

	// Lz4 is the LZ4 parquet compression codec.
	Lz4 compress.Codec = &lz4.Codec{Level: lz4.DefaultLevel}

	// Zstd is the ZSTD parquet compression codec.
	Zstd compress.Codec = &zstd.Codec{Level: zstd.DefaultLevel}
)

// LookupCompressionCodec returns the codec implementing the given
// compression algorithm.
//
// The returned error wraps ErrUnsupported for algorithms the format defines
// but this package does not implement (LZO), and ErrCorrupted for values
// outside the format's enumeration.
func LookupCompressionCodec(codec format.CompressionCodec) (compress.Codec, error) {
	switch codec {
	case format.Uncompressed:
		return Uncompressed, nil
	case format.Snappy:
		return Snappy, nil
	case format.Gzip:
		return Gzip, nil
	case format.Brotli:
		return Brotli, nil
	case format.Lz4, format.Lz4Raw:
		return Lz4, nil
	case format.Zstd:
		return Zstd, nil
	case format.Lzo:
		return nil, fmt.Errorf("the LZO compression codec is not implemented: %w", ErrUnsupported)
	default:
		return nil, fmt.Errorf("unknown compression codec %d: %w", codec, ErrCorrupted)
	}
}
