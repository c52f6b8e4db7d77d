// Package plain implements the PLAIN parquet encoding.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#plain-plain--0
package plain

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/dobesv/parquets/deprecated"
	"github.com/dobesv/parquets/encoding"
)

const (
	// ByteArrayLengthSize is the size of the length prefix of BYTE_ARRAY
	// values.
	ByteArrayLengthSize = 4

	// MaxByteArrayLength is the maximum length of a BYTE_ARRAY value.
	MaxByteArrayLength = math.MaxInt32
)

// AppendBoolean sets the bit at index n of b to v, growing b as needed.
//
// Boolean values are bit-packed in the PLAIN encoding, least significant bit
// first, so the byte length of the output is the bit count rounded up.
func AppendBoolean(b []byte, n int, v bool) []byte {
	i := n / 8
	j := n % 8

	if cap(b) > i {
		b = b[:i+1]
	} else {
		tmp := make([]byte, i+1, 2*(i+1))
		copy(tmp, b)
		b = tmp
	}

	k := uint(j)
	x := byte(0)
	if v {
		x = 1
	}

	b[i] = (b[i] & ^(1 << k)) | (x << k)
	return b
}

// AppendInt32 appends the 4-byte little-endian representation of v to b.
func AppendInt32(b []byte, v int32) []byte {
	x := [4]byte{}
	binary.LittleEndian.PutUint32(x[:], uint32(v))
	return append(b, x[:]...)
}

// AppendInt64 appends the 8-byte little-endian representation of v to b.
func AppendInt64(b []byte, v int64) []byte {
	x := [8]byte{}
	binary.LittleEndian.PutUint64(x[:], uint64(v))
	return append(b, x[:]...)
}

// AppendInt96 appends the 12-byte little-endian representation of v to b.
func AppendInt96(b []byte, v deprecated.Int96) []byte {
	x := v.Bytes()
	return append(b, x[:]...)
}

// AppendFloat appends the 4-byte little-endian representation of v to b.
func AppendFloat(b []byte, v float32) []byte {
	x := [4]byte{}
	binary.LittleEndian.PutUint32(x[:], math.Float32bits(v))
	return append(b, x[:]...)
}

// AppendDouble appends the 8-byte little-endian representation of v to b.
func AppendDouble(b []byte, v float64) []byte {
	x := [8]byte{}
	binary.LittleEndian.PutUint64(x[:], math.Float64bits(v))
	return append(b, x[:]...)
}

// AppendByteArray appends the length-prefixed representation of v to b.
func AppendByteArray(b, v []byte) []byte {
	length := [ByteArrayLengthSize]byte{}
	PutByteArrayLength(length[:], len(v))
	b = append(b, length[:]...)
	b = append(b, v...)
	return b
}

// ByteArrayLength reads the 4-byte length prefix at the start of b.
func ByteArrayLength(b []byte) int {
	return int(binary.LittleEndian.Uint32(b))
}

// PutByteArrayLength writes n as the 4-byte length prefix at the start of b.
func PutByteArrayLength(b []byte, n int) {
	binary.LittleEndian.PutUint32(b, uint32(n))
}

// DecodeBoolean appends to dst exactly count boolean values bit-packed in
// src.
func DecodeBoolean(dst []bool, src []byte, count int) ([]bool, error) {
	if need := (count + 7) / 8; len(src) < need {
		return dst, fmt.Errorf("input of %d bytes is too short to contain %d PLAIN booleans: %w", len(src), count, io.ErrUnexpectedEOF)
	}
	for i := 0; i < count; i++ {
		dst = append(dst, (src[i/8]>>(uint(i)%8))&1 != 0)
	}
	return dst, nil
}

// DecodeInt32 appends to dst the 4-byte little-endian values of src.
func DecodeInt32(dst []int32, src []byte) ([]int32, error) {
	if (len(src) % 4) != 0 {
		return dst, errDecodeInvalidInputSize("INT32", len(src))
	}
	for i := 0; i < len(src); i += 4 {
		dst = append(dst, int32(binary.LittleEndian.Uint32(src[i:])))
	}
	return dst, nil
}

// DecodeInt64 appends to dst the 8-byte little-endian values of src.
func DecodeInt64(dst []int64, src []byte) ([]int64, error) {
	if (len(src) % 8) != 0 {
		return dst, errDecodeInvalidInputSize("INT64", len(src))
	}
	for i := 0; i < len(src); i += 8 {
		dst = append(dst, int64(binary.LittleEndian.Uint64(src[i:])))
	}
	return dst, nil
}

// DecodeInt96 appends to dst the 12-byte little-endian values of src.
func DecodeInt96(dst []deprecated.Int96, src []byte) ([]deprecated.Int96, error) {
	if (len(src) % 12) != 0 {
		return dst, errDecodeInvalidInputSize("INT96", len(src))
	}
	for i := 0; i < len(src); i += 12 {
		dst = append(dst, deprecated.Int96FromBytes(src[i:]))
	}
	return dst, nil
}

// DecodeFloat appends to dst the 4-byte little-endian values of src.
func DecodeFloat(dst []float32, src []byte) ([]float32, error) {
	if (len(src) % 4) != 0 {
		return dst, errDecodeInvalidInputSize("FLOAT", len(src))
	}
	for i := 0; i < len(src); i += 4 {
		dst = append(dst, math.Float32frombits(binary.LittleEndian.Uint32(src[i:])))
	}
	return dst, nil
}

// DecodeDouble appends to dst the 8-byte little-endian values of src.
func DecodeDouble(dst []float64, src []byte) ([]float64, error) {
	if (len(src) % 8) != 0 {
		return dst, errDecodeInvalidInputSize("DOUBLE", len(src))
	}
	for i := 0; i < len(src); i += 8 {
		dst = append(dst, math.Float64frombits(binary.LittleEndian.Uint64(src[i:])))
	}
	return dst, nil
}

// DecodeByteArray appends to dst the length-prefixed values of src. The
// returned slices alias src.
func DecodeByteArray(dst [][]byte, src []byte) ([][]byte, error) {
	for len(src) > 0 {
		var v []byte
		var err error
		if v, src, err = NextByteArray(src); err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// DecodeFixedLenByteArray appends to dst the values of src, each exactly
// size bytes. The returned slices alias src.
func DecodeFixedLenByteArray(dst [][]byte, src []byte, size int) ([][]byte, error) {
	if size <= 0 {
		return dst, fmt.Errorf("invalid FIXED_LEN_BYTE_ARRAY length %d: %w", size, encoding.ErrInvalidArgument)
	}
	if (len(src) % size) != 0 {
		return dst, errDecodeInvalidInputSize("FIXED_LEN_BYTE_ARRAY", len(src))
	}
	for i := 0; i < len(src); i += size {
		dst = append(dst, src[i:i+size:i+size])
	}
	return dst, nil
}

// NextByteArray reads the length-prefixed value at the start of b, returning
// the value and the remainder of b.
func NextByteArray(b []byte) (v, r []byte, err error) {
	if len(b) < ByteArrayLengthSize {
		return nil, b, ErrTooShort(len(b))
	}
	n := ByteArrayLength(b)
	if n > (len(b) - ByteArrayLengthSize) {
		return nil, b, ErrTooShort(len(b))
	}
	if n > MaxByteArrayLength {
		return nil, b, ErrTooLarge(n)
	}
	n += ByteArrayLengthSize
	return b[ByteArrayLengthSize:n:n], b[n:len(b):len(b)], nil
}

// RangeByteArray calls do for every length-prefixed value of b.
func RangeByteArray(b []byte, do func([]byte) error) (err error) {
	for len(b) > 0 {
		var v []byte
		if v, b, err = NextByteArray(b); err != nil {
			return err
		}
		if err = do(v); err != nil {
			return err
		}
	}
	return nil
}

// ErrTooShort constructs the error returned when an input buffer is too
// short to contain a PLAIN encoded byte array value.
func ErrTooShort(length int) error {
	return fmt.Errorf("input of length %d is too short to contain a PLAIN encoded byte array value: %w", length, io.ErrUnexpectedEOF)
}

// ErrTooLarge constructs the error returned when a byte array value exceeds
// the representable length.
func ErrTooLarge(length int) error {
	return fmt.Errorf("byte array of length %d is too large to be encoded", length)
}

func errDecodeInvalidInputSize(typ string, size int) error {
	return fmt.Errorf("input of size %d is not a multiple of the %s value size: %w", size, typ, io.ErrUnexpectedEOF)
}
