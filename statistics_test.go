package parquets

import (
	"bytes"
	"reflect"
	"testing"
)

func TestColumnStatistics(t *testing.T) {
	schema := MustSchema("words", Group{
		"word": Optional(String()),
	})

	words := []string{"apples", "bananas", "cherries", "oranges"}

	buffer := NewBuffer(schema)
	for i := 0; i < 4000; i++ {
		row := Record{}
		if i%2 == 0 {
			row["word"] = words[(i/2)%len(words)]
		}
		if err := buffer.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}

	stats := buffer.columns[0].stats.statistics()

	if stats.NullCount != 2000 {
		t.Errorf("null count is %d, want 2000", stats.NullCount)
	}
	if stats.DistinctCount != 4 {
		t.Errorf("distinct count is %d, want 4", stats.DistinctCount)
	}

	// BYTE_ARRAY bounds are stored in their PLAIN representation, length
	// prefix included.
	wantMin := append([]byte{6, 0, 0, 0}, "apples"...)
	wantMax := append([]byte{7, 0, 0, 0}, "oranges"...)
	if !reflect.DeepEqual(stats.MinValue, wantMin) {
		t.Errorf("min value is %q, want %q", stats.MinValue, wantMin)
	}
	if !reflect.DeepEqual(stats.MaxValue, wantMax) {
		t.Errorf("max value is %q, want %q", stats.MaxValue, wantMax)
	}
	if bytes.Compare(stats.MinValue, stats.MaxValue) > 0 {
		t.Error("min value sorts after max value")
	}
}

func TestColumnStatisticsInFooter(t *testing.T) {
	schema := MustSchema("numbers", Group{
		"n": Optional(Leaf(Int64Type)),
	})

	output := new(bytes.Buffer)
	w, err := NewWriter(output, schema)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		row := Record{}
		if i%4 != 0 {
			row["n"] = int64(i % 10)
		}
		if err := w.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFile(bytes.NewReader(output.Bytes()), int64(output.Len()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	stats := f.metadata.RowGroups[0].Columns[0].MetaData.Statistics
	if stats.NullCount != 25 {
		t.Errorf("null count is %d, want 25", stats.NullCount)
	}
	// The surviving rows cycle over every value of 0..9 (i=10 contributes
	// the 0).
	if stats.DistinctCount != 10 {
		t.Errorf("distinct count is %d, want 10", stats.DistinctCount)
	}
	wantMin := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	wantMax := []byte{9, 0, 0, 0, 0, 0, 0, 0}
	if !reflect.DeepEqual(stats.MinValue, wantMin) {
		t.Errorf("min value is %v, want %v", stats.MinValue, wantMin)
	}
	if !reflect.DeepEqual(stats.MaxValue, wantMax) {
		t.Errorf("max value is %v, want %v", stats.MaxValue, wantMax)
	}
}
