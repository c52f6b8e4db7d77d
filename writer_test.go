package parquets_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/dobesv/parquets"
	"github.com/dobesv/parquets/compress"
	"github.com/dobesv/parquets/deprecated"
	"github.com/google/uuid"
)

func mixedSchema(t testing.TB) *parquets.Schema {
	t.Helper()
	return parquets.MustSchema("mixed", parquets.Group{
		"id":   parquets.Leaf(parquets.Int64Type),
		"name": parquets.Optional(parquets.String()),
		"tags": parquets.Repeated(parquets.String()),
		"meta": parquets.Optional(parquets.Group{
			"score": parquets.Optional(parquets.Leaf(parquets.DoubleType)),
			"flags": parquets.Repeated(parquets.Leaf(parquets.Int32Type)),
		}),
	})
}

func mixedRows(numRows int) []parquets.Record {
	rows := make([]parquets.Record, numRows)
	for i := range rows {
		row := parquets.Record{"id": int64(i)}

		if i%3 != 0 {
			row["name"] = fmt.Sprintf("row-%d", i)
		}
		if n := i % 4; n > 0 {
			tags := make([]interface{}, n)
			for j := range tags {
				tags[j] = fmt.Sprintf("tag-%d-%d", i, j)
			}
			row["tags"] = tags
		}
		if i%5 != 0 {
			meta := map[string]interface{}{}
			if i%2 == 0 {
				meta["score"] = float64(i) / 8
			}
			if n := i % 3; n > 0 {
				flags := make([]interface{}, n)
				for j := range flags {
					flags[j] = int32(i + j)
				}
				meta["flags"] = flags
			}
			row["meta"] = meta
		}
		rows[i] = row
	}
	return rows
}

func writeFile(t testing.TB, schema *parquets.Schema, rows []parquets.Record, options ...parquets.WriterOption) []byte {
	t.Helper()
	output := new(bytes.Buffer)

	w, err := parquets.NewWriter(output, schema, options...)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		if err := w.WriteRow(row); err != nil {
			t.Fatalf("writing row %d: %s", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return output.Bytes()
}

func readAllRows(t testing.TB, data []byte, options ...parquets.ReaderOption) (*parquets.File, []parquets.Record) {
	t.Helper()
	f, err := parquets.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	cursor, err := f.Rows(options...)
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	rows := []parquets.Record{}
	for {
		row, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, row)
	}
	return f, rows
}

func TestWriterRoundTrip(t *testing.T) {
	codecs := []struct {
		name  string
		codec compress.Codec
	}{
		{name: "uncompressed", codec: parquets.Uncompressed},
		{name: "snappy", codec: parquets.Snappy},
		{name: "gzip", codec: parquets.Gzip},
		{name: "brotli", codec: parquets.Brotli},
		{name: "lz4", codec: parquets.Lz4},
		{name: "zstd", codec: parquets.Zstd},
	}

	for _, version := range []int{1, 2} {
		for _, test := range codecs {
			t.Run(fmt.Sprintf("v%d/%s", version, test.name), func(t *testing.T) {
				schema := mixedSchema(t)
				rows := mixedRows(1000)

				data := writeFile(t, schema, rows,
					parquets.DataPageVersion(version),
					parquets.Compression(test.codec),
				)

				f, decoded := readAllRows(t, data)
				defer f.Close()

				if n := f.NumRows(); n != 1000 {
					t.Errorf("file declares %d rows, want 1000", n)
				}
				if !reflect.DeepEqual(decoded, rows) {
					t.Error("rows did not round-trip")
				}
			})
		}
	}
}

func TestWriterRowGroups(t *testing.T) {
	schema := mixedSchema(t)
	rows := mixedRows(35)

	data := writeFile(t, schema, rows, parquets.RowGroupRowLimit(10))

	f, decoded := readAllRows(t, data)
	defer f.Close()

	if n := f.NumRowGroups(); n != 4 {
		t.Errorf("file holds %d row groups, want 4", n)
	}
	if !reflect.DeepEqual(decoded, rows) {
		t.Error("rows did not round-trip across row groups")
	}
}

func TestWriterPageRowLimit(t *testing.T) {
	schema := mixedSchema(t)
	rows := mixedRows(100)

	for _, version := range []int{1, 2} {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			data := writeFile(t, schema, rows,
				parquets.DataPageVersion(version),
				parquets.PageRowLimit(7),
				parquets.Compression(parquets.Snappy),
			)

			f, decoded := readAllRows(t, data)
			defer f.Close()

			if !reflect.DeepEqual(decoded, rows) {
				t.Error("rows did not round-trip across pages")
			}
		})
	}
}

func TestWriterKeyValueMetadata(t *testing.T) {
	schema := mixedSchema(t)
	output := new(bytes.Buffer)

	w, err := parquets.NewWriter(output, schema,
		parquets.KeyValueMetadata("written_by", "unit test"),
	)
	if err != nil {
		t.Fatal(err)
	}
	w.SetKeyValueMetadata("revision", "42")
	if err := w.WriteRow(parquets.Record{"id": int64(1)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := parquets.OpenFile(bytes.NewReader(output.Bytes()), int64(output.Len()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, want := range [][2]string{
		{"written_by", "unit test"},
		{"revision", "42"},
	} {
		if v, ok := f.Lookup(want[0]); !ok || v != want[1] {
			t.Errorf("metadata %q is %q (%t), want %q", want[0], v, ok, want[1])
		}
	}
	if _, ok := f.Lookup("missing"); ok {
		t.Error("lookup of a missing key succeeded")
	}
}

func TestWriterColumnProjection(t *testing.T) {
	schema := mixedSchema(t)
	rows := mixedRows(20)

	data := writeFile(t, schema, rows)
	f, decoded := readAllRows(t, data, parquets.SelectColumns("id", "meta.score"))
	defer f.Close()

	if len(decoded) != len(rows) {
		t.Fatalf("projection produced %d rows, want %d", len(decoded), len(rows))
	}
	for i, row := range decoded {
		want := parquets.Record{"id": rows[i]["id"]}
		if meta, ok := rows[i]["meta"].(map[string]interface{}); ok {
			// A present meta group materializes even when the selected leaf
			// below it is absent.
			m := map[string]interface{}{}
			if score, ok := meta["score"]; ok {
				m["score"] = score
			}
			want["meta"] = m
		}
		if !reflect.DeepEqual(row, want) {
			t.Errorf("row %d is %#v, want %#v", i, row, want)
		}
	}
}

func TestColumnCursor(t *testing.T) {
	schema := mixedSchema(t)
	rows := mixedRows(25)

	data := writeFile(t, schema, rows, parquets.RowGroupRowLimit(10))

	f, err := parquets.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cursor, err := f.ColumnCursor("tags")
	if err != nil {
		t.Fatal(err)
	}
	defer cursor.Close()

	for i := range rows {
		v, err := cursor.Next()
		if err != nil {
			t.Fatalf("row %d: %s", i, err)
		}
		want := rows[i]["tags"]
		if want == nil {
			if v != nil {
				t.Errorf("row %d: tags are %v, want absent", i, v)
			}
			continue
		}
		if !reflect.DeepEqual(v, want) {
			t.Errorf("row %d: tags are %v, want %v", i, v, want)
		}
	}
	if _, err := cursor.Next(); err != io.EOF {
		t.Errorf("error after the last row is %v, want io.EOF", err)
	}
}

func TestWriterLogicalTypes(t *testing.T) {
	schema := parquets.MustSchema("logical", parquets.Group{
		"born":     parquets.Date(),
		"seen_ms":  parquets.TimestampMillis(),
		"seen_us":  parquets.TimestampMicros(),
		"span":     parquets.Interval(),
		"token":    parquets.UUID(),
		"document": parquets.Optional(parquets.BSON()),
		"legacy":   parquets.Optional(parquets.Leaf(parquets.Int96Type)),
	})

	id := uuid.MustParse("12345678-9abc-def0-1234-56789abcdef0")
	row := parquets.Record{
		"born":     time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC),
		"seen_ms":  time.Date(2021, 3, 14, 15, 9, 26, 535000000, time.UTC),
		"seen_us":  time.Date(2021, 3, 14, 15, 9, 26, 535897000, time.UTC),
		"span":     parquets.IntervalValue{Months: 1, Days: 2, Milliseconds: 3},
		"token":    id,
		"document": []byte{0x05, 0x00, 0x00, 0x00, 0x00},
		"legacy":   deprecated.Int96{1, 2, 3},
	}

	data := writeFile(t, schema, []parquets.Record{row})
	f, rows := readAllRows(t, data)
	defer f.Close()

	want := parquets.Record{
		"born":     row["born"],
		"seen_ms":  row["seen_ms"],
		"seen_us":  row["seen_us"],
		"span":     row["span"],
		"token":    id[:],
		"document": row["document"],
		"legacy":   row["legacy"],
	}
	if !reflect.DeepEqual(rows, []parquets.Record{want}) {
		t.Errorf("rows are %#v, want %#v", rows, []parquets.Record{want})
	}
}

func TestWriterPerColumnCompression(t *testing.T) {
	schema := parquets.MustSchema("test", parquets.Group{
		"plain":  parquets.Leaf(parquets.Int64Type),
		"packed": parquets.Compressed(parquets.String(), parquets.Gzip),
	})

	rows := make([]parquets.Record, 50)
	for i := range rows {
		rows[i] = parquets.Record{
			"plain":  int64(i),
			"packed": fmt.Sprintf("value-%d", i),
		}
	}

	data := writeFile(t, schema, rows)
	f, decoded := readAllRows(t, data)
	defer f.Close()

	if !reflect.DeepEqual(decoded, rows) {
		t.Error("rows did not round-trip with per-column compression")
	}
}

func TestWriterEmptyFile(t *testing.T) {
	schema := mixedSchema(t)
	data := writeFile(t, schema, nil)

	f, rows := readAllRows(t, data)
	defer f.Close()

	if n := f.NumRows(); n != 0 {
		t.Errorf("empty file declares %d rows", n)
	}
	if len(rows) != 0 {
		t.Errorf("empty file produced %d rows", len(rows))
	}
}

func TestWriterClose(t *testing.T) {
	schema := mixedSchema(t)
	output := new(bytes.Buffer)

	w, err := parquets.NewWriter(output, schema)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(parquets.Record{"id": int64(1)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("closing twice: %v", err)
	}
	if err := w.WriteRow(parquets.Record{"id": int64(2)}); !errors.Is(err, parquets.ErrClosed) {
		t.Errorf("writing after close: %v", err)
	}
}

func TestWriterUnusableAfterShredError(t *testing.T) {
	schema := mixedSchema(t)
	output := new(bytes.Buffer)

	w, err := parquets.NewWriter(output, schema)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow(parquets.Record{}); !errors.Is(err, parquets.ErrSchemaMismatch) {
		t.Fatalf("shredding an invalid row: %v", err)
	}
	if err := w.WriteRow(parquets.Record{"id": int64(1)}); !errors.Is(err, parquets.ErrSchemaMismatch) {
		t.Errorf("the writer accepted a row after a shred error: %v", err)
	}
	if err := w.Close(); !errors.Is(err, parquets.ErrSchemaMismatch) {
		t.Errorf("closing a poisoned writer: %v", err)
	}
}

func TestFileCloseIdempotent(t *testing.T) {
	schema := mixedSchema(t)
	data := writeFile(t, schema, mixedRows(3))

	f, err := parquets.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("closing twice: %v", err)
	}
}
