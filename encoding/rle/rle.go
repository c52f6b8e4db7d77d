// Package rle implements the hybrid RLE/Bit-Packed encoding employed for
// repetition and definition levels.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#run-length-encoding--bit-packing-hybrid-rle--3
package rle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dobesv/parquets/encoding"
	"github.com/dobesv/parquets/internal/bits"
)

// EnvelopeSize is the size of the little-endian length prefix carried by
// level streams in data pages v1.
const EnvelopeSize = 4

// EncodeInt32 appends to dst the hybrid encoding of src, where every value
// fits in bitWidth bits. This is the raw framing used by data pages v2.
func EncodeInt32(dst []byte, src []int32, bitWidth uint) ([]byte, error) {
	if bitWidth > 32 {
		return dst, errEncodeInvalidBitWidth("INT32", bitWidth)
	}
	if bitWidth == 0 {
		if !isZeroInt32(src) {
			return dst, errEncodeInvalidBitWidth("INT32", bitWidth)
		}
		if len(src) == 0 {
			return dst, nil
		}
		return appendUvarint(dst, uint64(len(src))<<1), nil
	}

	n8 := (len(src) / 8) * 8

	for i := 0; i < n8; {
		j := i
		for j < n8 && isRunOf(src[j:j+8], src[i]) {
			j += 8
		}

		if j > i {
			dst = appendUvarint(dst, uint64(j-i)<<1)
			dst = appendRunValue(dst, src[i], bitWidth)
		} else {
			j = i + 8
			for j < n8 && !isRunOf(src[j:j+8], src[j]) {
				j += 8
			}

			dst = appendUvarint(dst, uint64((j-i)/8)<<1|1)

			for k := i; k < j; k += 8 {
				dst = appendBitPacked(dst, src[k:k+8], bitWidth)
			}
		}

		i = j
	}

	for i := n8; i < len(src); {
		j := i + 1
		for j < len(src) && src[i] == src[j] {
			j++
		}
		dst = appendUvarint(dst, uint64(j-i)<<1)
		dst = appendRunValue(dst, src[i], bitWidth)
		i = j
	}

	return dst, nil
}

// EncodeInt32LengthPrefixed appends to dst the hybrid encoding of src
// preceded by its byte length as a 4-byte little-endian integer. This is the
// framing used by data pages v1.
func EncodeInt32LengthPrefixed(dst []byte, src []int32, bitWidth uint) ([]byte, error) {
	n := len(dst)
	dst = append(dst, 0, 0, 0, 0)
	dst, err := EncodeInt32(dst, src, bitWidth)
	if err != nil {
		return dst, err
	}
	binary.LittleEndian.PutUint32(dst[n:], uint32(len(dst)-n-EnvelopeSize))
	return dst, nil
}

// DecodeInt32 appends to dst all the values encoded in src. Bit-packed
// blocks carry values in multiples of 8, so the output may extend past the
// count the encoder was given by up to 7 padding values; callers truncate to
// the count they expect.
func DecodeInt32(dst []int32, src []byte, bitWidth uint) ([]int32, error) {
	if bitWidth > 32 {
		return dst, errDecodeInvalidBitWidth("INT32", bitWidth)
	}

	bitMask := uint64(1)<<bitWidth - 1
	byteCount1 := bits.ByteCount(bitWidth)
	byteCount8 := bits.ByteCount(8 * bitWidth)

	for i := 0; i < len(src); {
		u, n := binary.Uvarint(src[i:])
		if n <= 0 {
			return dst, fmt.Errorf("decoding hybrid block header: %w", io.ErrUnexpectedEOF)
		}
		i += n

		count, bitpack := uint(u>>1), (u&1) != 0
		if count == 0 {
			return dst, fmt.Errorf("hybrid block of length zero")
		}

		if !bitpack {
			j := i + byteCount1
			if j > len(src) {
				return dst, fmt.Errorf("decoding run-length block of %d values: %w", count, io.ErrUnexpectedEOF)
			}

			b := [4]byte{}
			copy(b[:], src[i:j])
			word := int32(binary.LittleEndian.Uint32(b[:]))
			i = j

			for ; count > 0; count-- {
				dst = append(dst, word)
			}
		} else {
			if bitWidth == 0 {
				return dst, fmt.Errorf("bit-packed block with bit-width zero")
			}

			for g := uint(0); g < count; g++ {
				j := i + byteCount8
				if j > len(src) {
					return dst, fmt.Errorf("decoding bit-packed block of %d values: %w", 8*count, io.ErrUnexpectedEOF)
				}

				value := uint64(0)
				bitOffset := uint(0)

				for _, b := range src[i:j] {
					value |= uint64(b) << bitOffset

					for bitOffset += 8; bitOffset >= bitWidth; {
						dst = append(dst, int32(value&bitMask))
						value >>= bitWidth
						bitOffset -= bitWidth
					}
				}

				i = j
			}
		}
	}

	return dst, nil
}

// DecodeInt32LengthPrefixed reads the 4-byte little-endian length at the
// start of src, decodes exactly that many bytes, and returns the values
// along with the remainder of src past the level section.
func DecodeInt32LengthPrefixed(dst []int32, src []byte, bitWidth uint) ([]int32, []byte, error) {
	if len(src) < EnvelopeSize {
		return dst, src, fmt.Errorf("input shorter than the 4-byte level section length: %w", io.ErrUnexpectedEOF)
	}
	n := int(binary.LittleEndian.Uint32(src))
	src = src[EnvelopeSize:]
	if n > len(src) {
		return dst, src, fmt.Errorf("level section length %d exceeds the %d bytes of input: %w", n, len(src), io.ErrUnexpectedEOF)
	}
	dst, err := DecodeInt32(dst, src[:n], bitWidth)
	return dst, src[n:], err
}

func errEncodeInvalidBitWidth(typ string, bitWidth uint) error {
	return errInvalidBitWidth("encode", typ, bitWidth)
}

func errDecodeInvalidBitWidth(typ string, bitWidth uint) error {
	return errInvalidBitWidth("decode", typ, bitWidth)
}

func errInvalidBitWidth(op, typ string, bitWidth uint) error {
	return fmt.Errorf("cannot %s %s with invalid bit-width=%d: %w", op, typ, bitWidth, encoding.ErrInvalidArgument)
}

func appendUvarint(dst []byte, u uint64) []byte {
	var b [binary.MaxVarintLen64]byte
	var n = binary.PutUvarint(b[:], u)
	return append(dst, b[:n]...)
}

func appendRunValue(dst []byte, v int32, bitWidth uint) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return append(dst, b[:bits.ByteCount(bitWidth)]...)
}

func appendBitPacked(dst []byte, group []int32, bitWidth uint) []byte {
	bitMask := uint64(1)<<bitWidth - 1
	acc := uint64(0)
	nbits := uint(0)

	for _, v := range group {
		acc |= (uint64(uint32(v)) & bitMask) << nbits
		nbits += bitWidth

		for nbits >= 8 {
			dst = append(dst, byte(acc))
			acc >>= 8
			nbits -= 8
		}
	}

	if nbits > 0 {
		dst = append(dst, byte(acc))
	}
	return dst
}

func isRunOf(group []int32, value int32) bool {
	for _, v := range group {
		if v != value {
			return false
		}
	}
	return true
}

func isZeroInt32(data []int32) bool {
	for _, v := range data {
		if v != 0 {
			return false
		}
	}
	return true
}
