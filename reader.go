package parquets

import (
	"fmt"
	"io"
)

// Rows is a cursor over the records of a file, fetching and assembling one
// row group at a time.
//
// Independent cursors may read the same file concurrently as long as the
// underlying byte source supports overlapping reads; a single cursor is not
// safe for concurrent use.
type Rows struct {
	file     *File
	columns  []*Column
	rowGroup int
	rows     []Record
	index    int
	closed   bool
}

// Rows creates a cursor over the records of f. The cursor may be restricted
// to a subset of the leaf columns with the SelectColumns option, in which
// case the records it produces carry only those columns.
func (f *File) Rows(options ...ReaderOption) (*Rows, error) {
	config, err := NewReaderConfig(options...)
	if err != nil {
		return nil, err
	}

	columns, err := f.selectColumns(config.Columns)
	if err != nil {
		return nil, err
	}
	return &Rows{file: f, columns: columns}, nil
}

func (f *File) selectColumns(paths []string) ([]*Column, error) {
	if len(paths) == 0 {
		return f.schema.Columns(), nil
	}
	columns := make([]*Column, len(paths))
	for i, path := range paths {
		col, ok := f.schema.Lookup(path)
		if !ok {
			return nil, fmt.Errorf("no column at path %q in schema %q", path, f.schema.Name())
		}
		columns[i] = col
	}
	return columns, nil
}

// Next returns the next record, or io.EOF after the last row of the file.
func (r *Rows) Next() (Record, error) {
	if r.closed {
		return nil, io.EOF
	}

	for r.index >= len(r.rows) {
		if r.rowGroup >= r.file.NumRowGroups() {
			return nil, io.EOF
		}
		if err := r.readRowGroup(); err != nil {
			return nil, err
		}
	}

	row := r.rows[r.index]
	r.index++
	return row, nil
}

func (r *Rows) readRowGroup() error {
	numRows := r.file.metadata.RowGroups[r.rowGroup].NumRows

	streams := make([]*ColumnStream, len(r.columns))
	for i, col := range r.columns {
		stream, err := r.file.readColumnChunk(r.rowGroup, col)
		if err != nil {
			return err
		}
		streams[i] = stream
	}

	rows, err := assembleRows(r.columns, streams, numRows)
	if err != nil {
		return err
	}

	r.rows = rows
	r.index = 0
	r.rowGroup++
	return nil
}

// Close releases the buffers of the current row group; the cursor produces
// no further values. The method is idempotent.
func (r *Rows) Close() error {
	r.closed = true
	r.rows = nil
	return nil
}

// ColumnCursor is a lazy cursor over the per-row values of a single leaf
// column, fetching one column chunk at a time.
type ColumnCursor struct {
	file     *File
	column   *Column
	rowGroup int
	seq      *ColumnSequence
	closed   bool
}

// ColumnCursor creates a cursor over the values of the leaf column at the
// given dotted path.
func (f *File) ColumnCursor(path string) (*ColumnCursor, error) {
	col, ok := f.schema.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("no column at path %q in schema %q", path, f.schema.Name())
	}
	return &ColumnCursor{file: f, column: col}, nil
}

// Next returns the value of the column in the next row: a scalar or nil for
// non-repeated leaves, arrays nested to the depth of the repeated ancestors
// otherwise. It returns io.EOF after the last row.
func (c *ColumnCursor) Next() (interface{}, error) {
	if c.closed {
		return nil, io.EOF
	}

	for {
		if c.seq == nil {
			if c.rowGroup >= c.file.NumRowGroups() {
				return nil, io.EOF
			}
			stream, err := c.file.readColumnChunk(c.rowGroup, c.column)
			if err != nil {
				return nil, err
			}
			c.seq = &ColumnSequence{col: c.column, stream: stream}
			c.rowGroup++
		}

		v, err := c.seq.Next()
		if err == io.EOF {
			c.seq = nil
			continue
		}
		return v, err
	}
}

// Close releases the current column chunk; the cursor produces no further
// values. The method is idempotent.
func (c *ColumnCursor) Close() error {
	c.closed = true
	c.seq = nil
	return nil
}
