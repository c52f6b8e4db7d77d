package parquets_test

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/dobesv/parquets"
)

func dremelRecords() []parquets.Record {
	return []parquets.Record{
		{
			"DocId": int64(10),
			"Links": map[string]interface{}{
				"Forward": []interface{}{int64(20), int64(40), int64(60)},
			},
			"Name": []interface{}{
				map[string]interface{}{
					"Language": []interface{}{
						map[string]interface{}{"Code": "en-us", "Country": "us"},
						map[string]interface{}{"Code": "en"},
					},
					"Url": "http://A",
				},
				map[string]interface{}{"Url": "http://B"},
				map[string]interface{}{
					"Language": []interface{}{
						map[string]interface{}{"Code": "en-gb", "Country": "gb"},
					},
				},
			},
		},
		{
			"DocId": int64(20),
			"Links": map[string]interface{}{
				"Backward": []interface{}{int64(10), int64(30)},
				"Forward":  []interface{}{int64(80)},
			},
			"Name": []interface{}{
				map[string]interface{}{"Url": "http://C"},
			},
		},
	}
}

func TestShredDremelExample(t *testing.T) {
	schema := dremelSchema(t)
	buffer := parquets.NewBuffer(schema)

	for _, row := range dremelRecords() {
		if err := buffer.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}
	if n := buffer.NumRows(); n != 2 {
		t.Fatalf("buffer holds %d rows, want 2", n)
	}

	expected := []struct {
		path    string
		dLevels []int32
		rLevels []int32
		values  []interface{}
	}{
		{
			path:    "DocId",
			dLevels: []int32{0, 0},
			rLevels: []int32{0, 0},
			values:  []interface{}{int64(10), int64(20)},
		},
		{
			path:    "Links.Forward",
			dLevels: []int32{2, 2, 2, 2},
			rLevels: []int32{0, 1, 1, 0},
			values:  []interface{}{int64(20), int64(40), int64(60), int64(80)},
		},
		{
			path:    "Links.Backward",
			dLevels: []int32{1, 2, 2},
			rLevels: []int32{0, 0, 1},
			values:  []interface{}{int64(10), int64(30)},
		},
		{
			path:    "Name.Url",
			dLevels: []int32{2, 2, 1, 2},
			rLevels: []int32{0, 1, 1, 0},
			values:  []interface{}{"http://A", "http://B", "http://C"},
		},
		{
			path:    "Name.Language.Code",
			dLevels: []int32{2, 2, 1, 2, 1},
			rLevels: []int32{0, 2, 1, 1, 0},
			values:  []interface{}{"en-us", "en", "en-gb"},
		},
		{
			path:    "Name.Language.Country",
			dLevels: []int32{3, 2, 1, 3, 1},
			rLevels: []int32{0, 2, 1, 1, 0},
			values:  []interface{}{"us", "gb"},
		},
	}

	for _, want := range expected {
		col, ok := schema.Lookup(want.path)
		if !ok {
			t.Fatalf("column not found: %s", want.path)
		}
		stream := buffer.Stream(col.Index())

		if !reflect.DeepEqual(stream.DefinitionLevels(), want.dLevels) {
			t.Errorf("%s: definition levels are %v, want %v", want.path, stream.DefinitionLevels(), want.dLevels)
		}
		if !reflect.DeepEqual(stream.RepetitionLevels(), want.rLevels) {
			t.Errorf("%s: repetition levels are %v, want %v", want.path, stream.RepetitionLevels(), want.rLevels)
		}

		seq, err := schema.AssembleColumn(stream, want.path)
		if err != nil {
			t.Fatal(err)
		}
		flat := []interface{}{}
		for {
			v, err := seq.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			flat = appendFlattened(flat, v)
		}
		if !reflect.DeepEqual(flat, want.values) {
			t.Errorf("%s: values are %v, want %v", want.path, flat, want.values)
		}

		if got := stream.NumRows(); got != 2 {
			t.Errorf("%s: stream spans %d rows, want 2", want.path, got)
		}
		if got, want := stream.NumValues(), len(want.values); got != want {
			t.Errorf("%s: stream holds %d values, want %d", pathString(col.Path()), got, want)
		}
	}

	rows, err := buffer.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, dremelRecords()) {
		t.Errorf("round-trip mismatch:\ngot:  %#v\nwant: %#v", rows, dremelRecords())
	}
}

// appendFlattened flattens the nested arrays produced by column cursors so
// they can be compared against the flat value sequence of the column.
func appendFlattened(dst []interface{}, v interface{}) []interface{} {
	switch value := v.(type) {
	case nil:
		return dst
	case []interface{}:
		for _, e := range value {
			dst = appendFlattened(dst, e)
		}
		return dst
	default:
		return append(dst, v)
	}
}

func TestShredOptionalEmptyNested(t *testing.T) {
	schema := parquets.MustSchema("basket", parquets.Group{
		"fruit": parquets.Optional(parquets.Group{
			"color": parquets.Repeated(parquets.String()),
			"type":  parquets.Optional(parquets.String()),
		}),
	})

	input := []parquets.Record{
		{},
		{"fruit": map[string]interface{}{}},
		{"fruit": map[string]interface{}{"color": []interface{}{}}},
		{"fruit": map[string]interface{}{
			"color": []interface{}{"red", "blue"},
			"type":  "x",
		}},
	}

	// Empty repeated fields canonicalize to absent on the way back.
	want := []parquets.Record{
		{},
		{"fruit": map[string]interface{}{}},
		{"fruit": map[string]interface{}{}},
		{"fruit": map[string]interface{}{
			"color": []interface{}{"red", "blue"},
			"type":  "x",
		}},
	}

	buffer := parquets.NewBuffer(schema)
	for _, row := range input {
		if err := buffer.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}

	col, _ := schema.Lookup("fruit.color")
	stream := buffer.Stream(col.Index())
	if d := stream.DefinitionLevels(); !reflect.DeepEqual(d, []int32{0, 1, 1, 2, 2}) {
		t.Errorf("fruit.color definition levels are %v", d)
	}
	if r := stream.RepetitionLevels(); !reflect.DeepEqual(r, []int32{0, 0, 0, 0, 1}) {
		t.Errorf("fruit.color repetition levels are %v", r)
	}

	rows, err := buffer.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("round-trip mismatch:\ngot:  %#v\nwant: %#v", rows, want)
	}
}

func TestShredSchemaMismatch(t *testing.T) {
	schema := dremelSchema(t)

	tests := []struct {
		scenario string
		row      parquets.Record
	}{
		{
			scenario: "missing required field",
			row:      parquets.Record{"Name": []interface{}{}},
		},
		{
			scenario: "scalar for repeated field",
			row: parquets.Record{
				"DocId": int64(1),
				"Name":  map[string]interface{}{"Url": "http://A"},
			},
		},
		{
			scenario: "wrong value type",
			row:      parquets.Record{"DocId": "ten"},
		},
		{
			scenario: "scalar for group",
			row: parquets.Record{
				"DocId": int64(1),
				"Links": int64(2),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			buffer := parquets.NewBuffer(schema)
			err := buffer.WriteRow(test.row)
			if !errors.Is(err, parquets.ErrSchemaMismatch) {
				t.Fatalf("error is %v, want ErrSchemaMismatch", err)
			}
			// The buffer refuses further writes once its streams may be
			// misaligned.
			if err := buffer.WriteRow(parquets.Record{"DocId": int64(1)}); !errors.Is(err, parquets.ErrSchemaMismatch) {
				t.Errorf("buffer accepted a row after a shred error: %v", err)
			}
		})
	}
}

func TestShredTypedSlices(t *testing.T) {
	schema := parquets.MustSchema("test", parquets.Group{
		"values": parquets.Repeated(parquets.Leaf(parquets.Int64Type)),
	})

	buffer := parquets.NewBuffer(schema)
	if err := buffer.WriteRow(parquets.Record{"values": []int64{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}

	rows, err := buffer.Rows()
	if err != nil {
		t.Fatal(err)
	}
	want := []parquets.Record{{"values": []interface{}{int64(1), int64(2), int64(3)}}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows are %#v, want %#v", rows, want)
	}
}
