package parquets

import (
	"fmt"

	"github.com/dobesv/parquets/format"
)

// Kind is an enumeration type representing the physical types supported by
// the parquet format.
type Kind int8

const (
	Boolean Kind = iota
	Int32
	Int64
	Int96
	Float
	Double
	ByteArray
	FixedLenByteArray
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	return format.Type(k).String()
}

// PhysicalType returns the format representation of the kind.
func (k Kind) PhysicalType() format.Type {
	return format.Type(k)
}

// The Type interface represents the types of leaf columns. A type carries
// the physical representation of values, the optional converted type
// layering a logical interpretation over it, and the value length for
// fixed-length types.
type Type interface {
	// Returns the physical kind of values of this type.
	Kind() Kind

	// Returns the size in bytes of fixed-length values, zero for all other
	// types.
	Length() int

	// Returns the converted type annotation, nil when the type carries none.
	ConvertedType() *format.ConvertedType

	// Returns a human-readable representation of the type.
	String() string
}

type primitiveType struct {
	kind      Kind
	length    int
	converted *format.ConvertedType
}

func (t *primitiveType) Kind() Kind { return t.kind }

func (t *primitiveType) Length() int { return t.length }

func (t *primitiveType) ConvertedType() *format.ConvertedType { return t.converted }

func (t *primitiveType) String() string {
	if t.converted != nil {
		return fmt.Sprintf("%s (%s)", t.kind, *t.converted)
	}
	if t.kind == FixedLenByteArray {
		return fmt.Sprintf("%s(%d)", t.kind, t.length)
	}
	return t.kind.String()
}

var (
	// BooleanType is the parquet type of BOOLEAN values.
	BooleanType Type = &primitiveType{kind: Boolean}

	// Int32Type is the parquet type of INT32 values.
	Int32Type Type = &primitiveType{kind: Int32}

	// Int64Type is the parquet type of INT64 values.
	Int64Type Type = &primitiveType{kind: Int64}

	// Int96Type is the parquet type of the deprecated INT96 values.
	Int96Type Type = &primitiveType{kind: Int96}

	// FloatType is the parquet type of FLOAT values.
	FloatType Type = &primitiveType{kind: Float}

	// DoubleType is the parquet type of DOUBLE values.
	DoubleType Type = &primitiveType{kind: Double}

	// ByteArrayType is the parquet type of BYTE_ARRAY values.
	ByteArrayType Type = &primitiveType{kind: ByteArray}
)

// FixedLenByteArrayType constructs a type for FIXED_LEN_BYTE_ARRAY values of
// the given length in bytes.
func FixedLenByteArrayType(length int) Type {
	return &primitiveType{kind: FixedLenByteArray, length: length}
}

func convertedTypeOf(t format.ConvertedType) *format.ConvertedType {
	return &t
}

func typeFromElement(el *format.SchemaElement) (Type, error) {
	if el.Type == nil {
		return nil, fmt.Errorf("schema element %q has no physical type: %w", el.Name, ErrCorrupted)
	}

	t := &primitiveType{converted: el.ConvertedType}

	switch *el.Type {
	case format.Boolean:
		t.kind = Boolean
	case format.Int32:
		t.kind = Int32
	case format.Int64:
		t.kind = Int64
	case format.Int96:
		t.kind = Int96
	case format.Float:
		t.kind = Float
	case format.Double:
		t.kind = Double
	case format.ByteArray:
		t.kind = ByteArray
	case format.FixedLenByteArray:
		t.kind = FixedLenByteArray
		if el.TypeLength == nil || *el.TypeLength <= 0 {
			return nil, fmt.Errorf("schema element %q of type FIXED_LEN_BYTE_ARRAY has no type length: %w", el.Name, ErrCorrupted)
		}
		t.length = int(*el.TypeLength)
	default:
		return nil, fmt.Errorf("schema element %q has unknown physical type %d: %w", el.Name, *el.Type, ErrCorrupted)
	}

	return t, nil
}
