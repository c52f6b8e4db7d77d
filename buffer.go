package parquets

import (
	"fmt"

	"github.com/dobesv/parquets/internal/bits"
)

// ColumnStream holds the three parallel sequences describing one leaf
// column within a row group: repetition levels, definition levels, and the
// values present at the positions where the definition level reaches the
// column maximum.
type ColumnStream struct {
	definitionLevels []int32
	repetitionLevels []int32
	values           []Value
}

// NumLevels returns the number of positions in the stream, which is the
// common length of the level sequences.
func (s *ColumnStream) NumLevels() int { return len(s.definitionLevels) }

// NumValues returns the number of non-null values in the stream.
func (s *ColumnStream) NumValues() int { return len(s.values) }

// DefinitionLevels returns the definition level sequence. The returned
// slice must be treated as read-only.
func (s *ColumnStream) DefinitionLevels() []int32 { return s.definitionLevels }

// RepetitionLevels returns the repetition level sequence. The returned
// slice must be treated as read-only.
func (s *ColumnStream) RepetitionLevels() []int32 { return s.repetitionLevels }

// Values returns the value sequence. The returned slice must be treated as
// read-only.
func (s *ColumnStream) Values() []Value { return s.values }

// NumRows returns the number of row starts in the stream, which are the
// positions holding a repetition level of zero.
func (s *ColumnStream) NumRows() int {
	return bits.CountInt32(s.repetitionLevels, 0)
}

func (s *ColumnStream) numNulls(maxDefinitionLevel int32) int {
	return len(s.definitionLevels) - bits.CountInt32(s.definitionLevels, maxDefinitionLevel)
}

func (s *ColumnStream) reset() {
	s.definitionLevels = s.definitionLevels[:0]
	s.repetitionLevels = s.repetitionLevels[:0]
	s.values = s.values[:0]
}

type columnBuffer struct {
	column *Column
	ColumnStream
	stats columnStatistics
}

func (cb *columnBuffer) writeValue(v Value, definitionLevel, repetitionLevel int32) {
	cb.definitionLevels = append(cb.definitionLevels, definitionLevel)
	cb.repetitionLevels = append(cb.repetitionLevels, repetitionLevel)
	cb.values = append(cb.values, v)
	cb.stats.observe(v)
}

func (cb *columnBuffer) writeNull(definitionLevel, repetitionLevel int32) {
	cb.definitionLevels = append(cb.definitionLevels, definitionLevel)
	cb.repetitionLevels = append(cb.repetitionLevels, repetitionLevel)
	cb.stats.observeNull()
}

// Buffer accumulates the shredded representation of records before they are
// written out as a row group: one set of column streams, one row count, and
// one statistics accumulator per leaf column.
//
// Buffers are not safe to use concurrently from multiple goroutines. After
// a write error the buffer refuses further writes, since the column streams
// of a partially shredded record are misaligned.
type Buffer struct {
	schema  *Schema
	columns []*columnBuffer
	numRows int64
	err     error
}

// NewBuffer constructs a buffer shredding rows of the given schema.
func NewBuffer(schema *Schema) *Buffer {
	b := &Buffer{
		schema:  schema,
		columns: make([]*columnBuffer, len(schema.Columns())),
	}
	for i, col := range schema.Columns() {
		b.columns[i] = &columnBuffer{column: col, stats: makeColumnStatistics(col)}
	}
	return b
}

// Schema returns the schema of rows written to the buffer.
func (b *Buffer) Schema() *Schema { return b.schema }

// NumRows returns the number of rows written to the buffer.
func (b *Buffer) NumRows() int64 { return b.numRows }

// Stream returns the column stream of the leaf column at the given index in
// schema order.
func (b *Buffer) Stream(columnIndex int) *ColumnStream {
	return &b.columns[columnIndex].ColumnStream
}

// Rows assembles the records currently held by the buffer.
func (b *Buffer) Rows() ([]Record, error) {
	return assembleRows(b.schema.Columns(), b.streams(), b.numRows)
}

// Reset clears all rows written to the buffer, making it ready to shred a
// new row group.
func (b *Buffer) Reset() {
	for _, cb := range b.columns {
		cb.ColumnStream.reset()
		cb.stats.reset()
	}
	b.numRows = 0
	b.err = nil
}

func (b *Buffer) streams() []*ColumnStream {
	streams := make([]*ColumnStream, len(b.columns))
	for i := range b.columns {
		streams[i] = &b.columns[i].ColumnStream
	}
	return streams
}

func errColumnRowMismatch(a *Column, an int, b *Column, bn int) error {
	return fmt.Errorf("column %q holds %d rows but column %q holds %d: %w", a.pathString(), an, b.pathString(), bn, ErrCorrupted)
}
