package parquets

import (
	"fmt"
	"io"
)

// AssembleRows reconstructs the records shredded into the given column
// streams, one stream per leaf column in schema order.
//
// Reconstruction is the inverse of shredding up to two canonicalizations:
// absent optional fields stay absent, and repeated fields shredded from
// empty lists come back absent rather than empty.
//
// The returned error wraps ErrCorrupted when the streams do not describe a
// consistent set of records: levels exceeding the column maxima, value
// counts that do not match the count of fully defined positions, or columns
// that disagree on the number of rows.
func (s *Schema) AssembleRows(streams []*ColumnStream) ([]Record, error) {
	if len(streams) != len(s.columns) {
		return nil, fmt.Errorf("schema has %d columns but %d streams were provided: %w", len(s.columns), len(streams), ErrCorrupted)
	}
	return assembleRows(s.columns, streams, -1)
}

// assembleRows materializes records from the streams of the given leaf
// columns, which may be a subset of a schema's columns. numRows is the
// expected row count, or -1 when it is not known.
func assembleRows(columns []*Column, streams []*ColumnStream, numRows int64) ([]Record, error) {
	records := []Record{}
	rows := int(numRows)

	for i, col := range columns {
		n, err := assembleColumn(&records, col, streams[i])
		if err != nil {
			return nil, err
		}
		if rows < 0 {
			rows = n
		} else if rows != n {
			if i > 0 {
				return nil, errColumnRowMismatch(columns[i-1], rows, col, n)
			}
			return nil, fmt.Errorf("column %q holds %d rows but the row group declares %d: %w", col.pathString(), n, rows, ErrCorrupted)
		}
	}

	if rows > 0 && len(records) != rows {
		return nil, fmt.Errorf("assembled %d records out of %d rows: %w", len(records), rows, ErrCorrupted)
	}
	return records, nil
}

// assembleColumn walks one column stream and merges its contribution into
// records, returning the number of rows the stream spans.
func assembleColumn(records *[]Record, col *Column, stream *ColumnStream) (int, error) {
	if len(stream.repetitionLevels) != len(stream.definitionLevels) {
		return 0, fmt.Errorf("column %q has %d repetition levels but %d definition levels: %w",
			col.pathString(), len(stream.repetitionLevels), len(stream.definitionLevels), ErrCorrupted)
	}

	counters := make([]int, col.maxRepetitionLevel+1)
	valueIndex := 0

	for i := range stream.definitionLevels {
		d := stream.definitionLevels[i]
		r := stream.repetitionLevels[i]

		if err := checkLevels(col, d, r); err != nil {
			return 0, err
		}
		if i == 0 && r != 0 {
			return 0, fmt.Errorf("column %q starts in the middle of a record: %w", col.pathString(), ErrCorrupted)
		}

		counters[r]++
		for k := int(r) + 1; k < len(counters); k++ {
			counters[k] = 0
		}

		var v Value
		if d == col.maxDefinitionLevel {
			if valueIndex >= len(stream.values) {
				return 0, fmt.Errorf("column %q has more defined positions than values: %w", col.pathString(), ErrCorrupted)
			}
			v = stream.values[valueIndex]
			valueIndex++
		}

		for len(*records) < counters[0] {
			*records = append(*records, Record{})
		}
		materializeField((*records)[counters[0]-1], col.branch, counters[1:], d, v)
	}

	if valueIndex != len(stream.values) {
		return 0, fmt.Errorf("column %q holds %d values but only %d positions are fully defined: %w",
			col.pathString(), len(stream.values), valueIndex, ErrCorrupted)
	}
	return counters[0], nil
}

// materializeField places the value of one stream position into the record,
// descending the column branch from the first level below the root.
//
// counters holds, per repeated ancestor, the index of the list element the
// position belongs to; repeated nodes consume one counter, other nodes pass
// them through unchanged. A definition level below a node's maximum means
// the sub-tree is absent at this position and nothing is materialized.
func materializeField(group map[string]interface{}, branch []*Column, counters []int, d int32, v Value) {
	col := branch[0]
	if d < col.maxDefinitionLevel {
		return
	}

	if len(branch) > 1 {
		if col.Repeated() {
			list, _ := group[col.name].([]interface{})
			for len(list) <= counters[0] {
				list = append(list, map[string]interface{}{})
			}
			group[col.name] = list
			materializeField(list[counters[0]].(map[string]interface{}), branch[1:], counters[1:], d, v)
		} else {
			child, ok := group[col.name].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				group[col.name] = child
			}
			materializeField(child, branch[1:], counters, d, v)
		}
		return
	}

	if col.Repeated() {
		list, _ := group[col.name].([]interface{})
		for len(list) <= counters[0] {
			list = append(list, nil)
		}
		list[counters[0]] = col.assembleValue(v)
		group[col.name] = list
	} else {
		group[col.name] = col.assembleValue(v)
	}
}

func checkLevels(col *Column, d, r int32) error {
	if d < 0 || d > col.maxDefinitionLevel {
		return fmt.Errorf("definition level %d out of range [0,%d] in column %q: %w", d, col.maxDefinitionLevel, col.pathString(), ErrCorrupted)
	}
	if r < 0 || r > col.maxRepetitionLevel {
		return fmt.Errorf("repetition level %d out of range [0,%d] in column %q: %w", r, col.maxRepetitionLevel, col.pathString(), ErrCorrupted)
	}
	return nil
}

// ColumnSequence is a lazy sequence yielding, for every row of a column
// stream, the reconstructed value of one leaf column: a scalar or nil for
// non-repeated leaves, and arrays nested to the depth of the repeated
// ancestors otherwise.
type ColumnSequence struct {
	col    *Column
	stream *ColumnStream
	pos    int
	vi     int
}

// AssembleColumn returns a sequence over the per-row values of the leaf
// column at the given dotted path.
func (s *Schema) AssembleColumn(stream *ColumnStream, path string) (*ColumnSequence, error) {
	col, ok := s.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("no column at path %q in schema %q", path, s.name)
	}
	return &ColumnSequence{col: col, stream: stream}, nil
}

// Next returns the value of the next row, or io.EOF after the last row.
func (q *ColumnSequence) Next() (interface{}, error) {
	if q.pos >= len(q.stream.definitionLevels) {
		if q.vi != len(q.stream.values) {
			return nil, fmt.Errorf("column %q holds %d values but only %d positions are fully defined: %w",
				q.col.pathString(), len(q.stream.values), q.vi, ErrCorrupted)
		}
		return nil, io.EOF
	}

	record := Record{}
	counters := make([]int, q.col.maxRepetitionLevel+1)

	for first := true; q.pos < len(q.stream.definitionLevels); first = false {
		d := q.stream.definitionLevels[q.pos]
		r := q.stream.repetitionLevels[q.pos]

		if err := checkLevels(q.col, d, r); err != nil {
			return nil, err
		}
		if first && r != 0 {
			return nil, fmt.Errorf("column %q starts in the middle of a record: %w", q.col.pathString(), ErrCorrupted)
		}
		if !first && r == 0 {
			break
		}

		counters[r]++
		for k := int(r) + 1; k < len(counters); k++ {
			counters[k] = 0
		}

		var v Value
		if d == q.col.maxDefinitionLevel {
			if q.vi >= len(q.stream.values) {
				return nil, fmt.Errorf("column %q has more defined positions than values: %w", q.col.pathString(), ErrCorrupted)
			}
			v = q.stream.values[q.vi]
			q.vi++
		}

		materializeField(record, q.col.branch, counters[1:], d, v)
		q.pos++
	}

	return stripColumnValue(record, q.col.branch), nil
}

// stripColumnValue extracts the nested value of the column branch from a
// record holding only that branch.
func stripColumnValue(group map[string]interface{}, branch []*Column) interface{} {
	col := branch[0]
	v, ok := group[col.name]
	if !ok {
		return nil
	}
	if len(branch) == 1 {
		return v
	}
	if col.Repeated() {
		list := v.([]interface{})
		out := make([]interface{}, len(list))
		for i, e := range list {
			out[i] = stripColumnValue(e.(map[string]interface{}), branch[1:])
		}
		return out
	}
	return stripColumnValue(v.(map[string]interface{}), branch[1:])
}
