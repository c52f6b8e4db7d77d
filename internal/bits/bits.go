// Package bits implements the small bit arithmetic routines shared by the
// level and value codecs.
package bits

import "math/bits"

// ByteCount returns the number of bytes needed to hold count bits.
func ByteCount(count uint) int {
	return int((count + 7) / 8)
}

// Len32 returns the minimum number of bits required to represent v.
func Len32(v int32) int {
	return bits.Len32(uint32(v))
}

// CountInt32 returns the number of occurrences of value in data.
func CountInt32(data []int32, value int32) int {
	n := 0
	for _, v := range data {
		if v == value {
			n++
		}
	}
	return n
}
