package parquets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/dobesv/parquets/deprecated"
	"github.com/dobesv/parquets/encoding/plain"
	"github.com/dobesv/parquets/format"
	"github.com/google/uuid"
)

// The Value type is similar to the reflect.Value abstraction of Go values,
// but for parquet values. Value instances wrap underlying Go values mapped
// to one of the parquet physical types.
//
// Value instances are small, immutable objects, and usually passed by value
// between function calls.
//
// The zero-value of Value represents the null parquet value.
type Value struct {
	b    []byte
	u64  uint64
	kind int8 // XOR(Kind) so the zero-value is <null>
}

// IntervalValue is the Go representation of INTERVAL column values: a
// month, day and millisecond count, each stored on the wire as a 4-byte
// little-endian integer.
type IntervalValue struct {
	Months       int32
	Days         int32
	Milliseconds int32
}

// Kind returns the physical kind of v, or -1 if v is null.
func (v Value) Kind() Kind { return ^Kind(v.kind) }

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool { return v.kind == 0 }

// Boolean returns v as a bool, assuming the underlying type is BOOLEAN.
func (v Value) Boolean() bool { return v.u64 != 0 }

// Int32 returns v as an int32, assuming the underlying type is INT32.
func (v Value) Int32() int32 { return int32(v.u64) }

// Int64 returns v as an int64, assuming the underlying type is INT64.
func (v Value) Int64() int64 { return int64(v.u64) }

// Int96 returns v as an INT96 value, assuming the underlying type is INT96.
func (v Value) Int96() deprecated.Int96 { return deprecated.Int96FromBytes(v.b) }

// Float returns v as a float32, assuming the underlying type is FLOAT.
func (v Value) Float() float32 { return math.Float32frombits(uint32(v.u64)) }

// Double returns v as a float64, assuming the underlying type is DOUBLE.
func (v Value) Double() float64 { return math.Float64frombits(v.u64) }

// ByteArray returns v as a byte slice, assuming the underlying type is
// BYTE_ARRAY or FIXED_LEN_BYTE_ARRAY. The returned slice must be treated as
// read-only.
func (v Value) ByteArray() []byte { return v.b }

// String returns a human-readable representation of v.
func (v Value) String() string {
	switch v.Kind() {
	case Boolean:
		return fmt.Sprintf("%t", v.Boolean())
	case Int32:
		return fmt.Sprintf("%d", v.Int32())
	case Int64:
		return fmt.Sprintf("%d", v.Int64())
	case Int96:
		return v.Int96().String()
	case Float:
		return fmt.Sprintf("%g", v.Float())
	case Double:
		return fmt.Sprintf("%g", v.Double())
	case ByteArray, FixedLenByteArray:
		return string(v.b)
	default:
		return "<null>"
	}
}

func makeValueBoolean(b bool) Value {
	v := Value{kind: ^int8(Boolean)}
	if b {
		v.u64 = 1
	}
	return v
}

func makeValueInt32(i int32) Value {
	return Value{kind: ^int8(Int32), u64: uint64(i)}
}

func makeValueInt64(i int64) Value {
	return Value{kind: ^int8(Int64), u64: uint64(i)}
}

func makeValueInt96(i deprecated.Int96) Value {
	b := i.Bytes()
	return Value{kind: ^int8(Int96), b: b[:]}
}

func makeValueFloat(f float32) Value {
	return Value{kind: ^int8(Float), u64: uint64(math.Float32bits(f))}
}

func makeValueDouble(f float64) Value {
	return Value{kind: ^int8(Double), u64: math.Float64bits(f)}
}

func makeValueBytes(k Kind, b []byte) Value {
	return Value{kind: ^int8(k), b: b}
}

// makeValue converts the Go value v to a parquet value of the column's
// type, applying the conversions of its logical type. A mismatch between
// the Go type and the column type surfaces ErrSchemaMismatch.
func (c *Column) makeValue(v interface{}) (Value, error) {
	converted := format.ConvertedType(-1)
	if t := c.typ.ConvertedType(); t != nil {
		converted = *t
	}

	switch c.typ.Kind() {
	case Boolean:
		if b, ok := v.(bool); ok {
			return makeValueBoolean(b), nil
		}

	case Int32:
		switch value := v.(type) {
		case int32:
			return makeValueInt32(value), nil
		case int:
			return makeValueInt32(int32(value)), nil
		case int64:
			return makeValueInt32(int32(value)), nil
		case time.Time:
			if converted == format.Date {
				return makeValueInt32(int32(value.Unix() / 86400)), nil
			}
		}

	case Int64:
		switch value := v.(type) {
		case int64:
			return makeValueInt64(value), nil
		case int:
			return makeValueInt64(int64(value)), nil
		case int32:
			return makeValueInt64(int64(value)), nil
		case time.Time:
			switch converted {
			case format.TimestampMillis:
				return makeValueInt64(value.UnixMilli()), nil
			case format.TimestampMicros:
				return makeValueInt64(value.UnixMicro()), nil
			}
		}

	case Int96:
		if value, ok := v.(deprecated.Int96); ok {
			return makeValueInt96(value), nil
		}

	case Float:
		if f, ok := v.(float32); ok {
			return makeValueFloat(f), nil
		}

	case Double:
		switch value := v.(type) {
		case float64:
			return makeValueDouble(value), nil
		case float32:
			return makeValueDouble(float64(value)), nil
		}

	case ByteArray:
		switch value := v.(type) {
		case string:
			return makeValueBytes(ByteArray, []byte(value)), nil
		case []byte:
			return makeValueBytes(ByteArray, value), nil
		}

	case FixedLenByteArray:
		length := c.typ.Length()
		switch value := v.(type) {
		case []byte:
			if len(value) != length {
				return Value{}, fmt.Errorf("field %q expects %d bytes but got %d: %w", c.pathString(), length, len(value), ErrSchemaMismatch)
			}
			return makeValueBytes(FixedLenByteArray, value), nil
		case string:
			if len(value) != length {
				return Value{}, fmt.Errorf("field %q expects %d bytes but got %d: %w", c.pathString(), length, len(value), ErrSchemaMismatch)
			}
			return makeValueBytes(FixedLenByteArray, []byte(value)), nil
		case uuid.UUID:
			if length != 16 {
				break
			}
			b := value // copy the array before slicing it
			return makeValueBytes(FixedLenByteArray, b[:]), nil
		case IntervalValue:
			if converted == format.Interval {
				b := make([]byte, 0, 12)
				b = plain.AppendInt32(b, value.Months)
				b = plain.AppendInt32(b, value.Days)
				b = plain.AppendInt32(b, value.Milliseconds)
				return makeValueBytes(FixedLenByteArray, b), nil
			}
		}
	}

	return Value{}, fmt.Errorf("cannot use value of type %T in field %q of type %s: %w", v, c.pathString(), c.typ, ErrSchemaMismatch)
}

// assembleValue converts the parquet value v back to the Go representation
// of the column's logical type.
func (c *Column) assembleValue(v Value) interface{} {
	if t := c.typ.ConvertedType(); t != nil {
		switch *t {
		case format.UTF8, format.Json, format.Enum:
			return string(v.ByteArray())
		case format.Date:
			return time.Unix(86400*int64(v.Int32()), 0).UTC()
		case format.TimestampMillis:
			return time.UnixMilli(v.Int64()).UTC()
		case format.TimestampMicros:
			return time.UnixMicro(v.Int64()).UTC()
		case format.Interval:
			b := v.ByteArray()
			if len(b) == 12 {
				return IntervalValue{
					Months:       int32(binary.LittleEndian.Uint32(b[0:4])),
					Days:         int32(binary.LittleEndian.Uint32(b[4:8])),
					Milliseconds: int32(binary.LittleEndian.Uint32(b[8:12])),
				}
			}
		}
	}

	switch v.Kind() {
	case Boolean:
		return v.Boolean()
	case Int32:
		return v.Int32()
	case Int64:
		return v.Int64()
	case Int96:
		return v.Int96()
	case Float:
		return v.Float()
	case Double:
		return v.Double()
	default:
		b := v.ByteArray()
		return append([]byte{}, b...)
	}
}

// lessValue returns true if a sorts before b, comparing them as values of
// kind k. BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY values compare byte-wise.
func lessValue(a, b Value, k Kind) bool {
	switch k {
	case Boolean:
		return !a.Boolean() && b.Boolean()
	case Int32:
		return a.Int32() < b.Int32()
	case Int64:
		return a.Int64() < b.Int64()
	case Int96:
		return a.Int96().Less(b.Int96())
	case Float:
		return a.Float() < b.Float()
	case Double:
		return a.Double() < b.Double()
	default:
		return bytes.Compare(a.ByteArray(), b.ByteArray()) < 0
	}
}

// plainValue returns the PLAIN representation of v as a standalone byte
// sequence; BYTE_ARRAY values keep their 4-byte length prefix, BOOLEAN
// values occupy one byte.
func plainValue(v Value, k Kind) []byte {
	switch k {
	case Boolean:
		if v.Boolean() {
			return []byte{1}
		}
		return []byte{0}
	case Int32:
		return plain.AppendInt32(nil, v.Int32())
	case Int64:
		return plain.AppendInt64(nil, v.Int64())
	case Int96:
		return plain.AppendInt96(nil, v.Int96())
	case Float:
		return plain.AppendFloat(nil, v.Float())
	case Double:
		return plain.AppendDouble(nil, v.Double())
	case ByteArray:
		return plain.AppendByteArray(nil, v.ByteArray())
	default:
		return append([]byte{}, v.ByteArray()...)
	}
}
