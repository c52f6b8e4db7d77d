// Package deprecated provides implementations of the parquet types which are
// part of the format but deprecated for new writers.
package deprecated

import (
	"encoding/binary"
	"math/big"
)

// Int96 is an implementation of the deprecated INT96 parquet type, stored as
// three little-endian 32-bit words, least significant first.
type Int96 [3]uint32

// Int96FromBytes decodes the 12-byte little-endian representation of an
// INT96 value. The slice must be at least 12 bytes long.
func Int96FromBytes(b []byte) Int96 {
	return Int96{
		binary.LittleEndian.Uint32(b[0:4]),
		binary.LittleEndian.Uint32(b[4:8]),
		binary.LittleEndian.Uint32(b[8:12]),
	}
}

// Bytes returns the 12-byte little-endian representation of i.
func (i Int96) Bytes() [12]byte {
	b := [12]byte{}
	binary.LittleEndian.PutUint32(b[0:4], i[0])
	binary.LittleEndian.PutUint32(b[4:8], i[1])
	binary.LittleEndian.PutUint32(b[8:12], i[2])
	return b
}

// Negative returns true if i is a negative value.
func (i Int96) Negative() bool {
	return (i[2] >> 31) != 0
}

// Less returns true if i < j, comparing the operands as signed integers.
func (i Int96) Less(j Int96) bool {
	if i.Negative() != j.Negative() {
		return i.Negative()
	}
	for k := 2; k >= 0; k-- {
		switch {
		case i[k] < j[k]:
			return true
		case i[k] > j[k]:
			return false
		}
	}
	return false
}

// Int converts i to a big.Int representation.
func (i Int96) Int() *big.Int {
	z := new(big.Int)
	z.Or(z, big.NewInt(int64(int32(i[2]))))
	z.Lsh(z, 32)
	z.Or(z, big.NewInt(int64(i[1])))
	z.Lsh(z, 32)
	z.Or(z, big.NewInt(int64(i[0])))
	return z
}

// String returns a string representation of i.
func (i Int96) String() string {
	return i.Int().String()
}
