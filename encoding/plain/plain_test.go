package plain_test

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/dobesv/parquets/deprecated"
	"github.com/dobesv/parquets/encoding/plain"
)

func TestBooleanRoundTrip(t *testing.T) {
	src := []bool{true, false, true, true, false, false, true, false, true, true}

	data := []byte{}
	for i, v := range src {
		data = plain.AppendBoolean(data, i, v)
	}
	if len(data) != 2 {
		t.Fatalf("10 booleans packed into %d bytes, want 2", len(data))
	}

	decoded, err := plain.DecodeBoolean(nil, data, len(src))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, src) {
		t.Errorf("booleans did not round-trip: %v", decoded)
	}
}

func TestNumericRoundTrip(t *testing.T) {
	data := plain.AppendInt32(nil, -1)
	data = plain.AppendInt32(data, 42)
	i32, err := plain.DecodeInt32(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(i32, []int32{-1, 42}) {
		t.Errorf("int32 values did not round-trip: %v", i32)
	}

	data = plain.AppendInt64(nil, -1)
	data = plain.AppendInt64(data, 1<<62)
	i64, err := plain.DecodeInt64(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(i64, []int64{-1, 1 << 62}) {
		t.Errorf("int64 values did not round-trip: %v", i64)
	}

	data = plain.AppendInt96(nil, deprecated.Int96{1, 2, 3})
	i96, err := plain.DecodeInt96(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(i96, []deprecated.Int96{{1, 2, 3}}) {
		t.Errorf("int96 values did not round-trip: %v", i96)
	}

	data = plain.AppendFloat(nil, 0.5)
	f32, err := plain.DecodeFloat(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f32, []float32{0.5}) {
		t.Errorf("float values did not round-trip: %v", f32)
	}

	data = plain.AppendDouble(nil, -0.25)
	f64, err := plain.DecodeDouble(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f64, []float64{-0.25}) {
		t.Errorf("double values did not round-trip: %v", f64)
	}
}

func TestByteArrayRoundTrip(t *testing.T) {
	src := [][]byte{
		[]byte("hello"),
		{},
		[]byte("world"),
	}

	data := []byte{}
	for _, v := range src {
		data = plain.AppendByteArray(data, v)
	}

	decoded, err := plain.DecodeByteArray(nil, data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, src) {
		t.Errorf("byte arrays did not round-trip: %q", decoded)
	}
}

func TestByteArrayTruncated(t *testing.T) {
	data := plain.AppendByteArray(nil, []byte("hello"))
	_, err := plain.DecodeByteArray(nil, data[:7])
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error is %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFixedLenByteArrayRoundTrip(t *testing.T) {
	data := append([]byte("abcd"), []byte("efgh")...)
	decoded, err := plain.DecodeFixedLenByteArray(nil, data, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, [][]byte{[]byte("abcd"), []byte("efgh")}) {
		t.Errorf("fixed length byte arrays did not round-trip: %q", decoded)
	}

	if _, err := plain.DecodeFixedLenByteArray(nil, data[:6], 4); err == nil {
		t.Error("decoding a misaligned input did not fail")
	}
}
