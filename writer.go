package parquets

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dobesv/parquets/format"
	"github.com/segmentio/encoding/thrift"
)

// Writer serializes records into the parquet file layout: a magic header,
// row groups of column chunks, and a footer carrying the file metadata.
//
// Rows accumulate in a write buffer and are flushed as a row group whenever
// the buffered row count reaches the configured limit, or when Flush or
// Close is called.
//
// Writers are not safe to use concurrently from multiple goroutines. After
// a row fails to shred the writer refuses all further writes, since the
// column streams of the current row group are misaligned; Close remains
// safe to call and does not write a footer in that case.
type Writer struct {
	writer   io.Writer
	config   *WriterConfig
	schema   *Schema
	buffer   *Buffer
	protocol thrift.CompactProtocol

	offset    int64
	numRows   int64
	rowGroups []format.RowGroup
	metadata  map[string]string

	err    error
	closed bool
}

// NewWriter constructs a writer emitting rows of the given schema to
// output.
func NewWriter(output io.Writer, schema *Schema, options ...WriterOption) (*Writer, error) {
	config, err := NewWriterConfig(options...)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string, len(config.KeyValueMetadata))
	for k, v := range config.KeyValueMetadata {
		metadata[k] = v
	}

	return &Writer{
		writer:   output,
		config:   config,
		schema:   schema,
		buffer:   NewBuffer(schema),
		metadata: metadata,
	}, nil
}

// Schema returns the schema of rows written by w.
func (w *Writer) Schema() *Schema { return w.schema }

// WriteRow shreds the record into the current row group, flushing the group
// when it reaches the configured row limit.
func (w *Writer) WriteRow(row Record) error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}

	if err := w.buffer.WriteRow(row); err != nil {
		w.err = err
		return err
	}

	if w.buffer.NumRows() >= w.config.RowGroupRowLimit {
		return w.Flush()
	}
	return nil
}

// SetKeyValueMetadata adds an entry to the user key/value metadata written
// in the file footer, replacing any previous value of the key.
func (w *Writer) SetKeyValueMetadata(key, value string) {
	w.metadata[key] = value
}

// Flush writes the buffered rows out as a row group. Flushing an empty
// buffer is a no-op.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	if w.buffer.NumRows() == 0 {
		return nil
	}

	if err := w.writeMagic(); err != nil {
		return err
	}

	fileOffset := w.offset
	columns := make([]format.ColumnChunk, len(w.buffer.columns))
	totalByteSize := int64(0)
	totalCompressedSize := int64(0)

	for i, cb := range w.buffer.columns {
		codec := cb.column.codec
		if codec == nil {
			codec = w.config.Compression
		}

		chunk, err := encodeColumnChunk(cb, codec, w.config.DataPageVersion, w.config.PageRowLimit)
		if err != nil {
			w.err = err
			return err
		}

		meta := chunk.meta
		meta.DataPageOffset = w.offset
		columns[i] = format.ColumnChunk{
			FileOffset: w.offset,
			MetaData:   meta,
		}

		if err := w.write(chunk.data); err != nil {
			return err
		}

		totalByteSize += meta.TotalUncompressedSize
		totalCompressedSize += meta.TotalCompressedSize
	}

	w.rowGroups = append(w.rowGroups, format.RowGroup{
		Columns:             columns,
		TotalByteSize:       totalByteSize,
		NumRows:             w.buffer.NumRows(),
		FileOffset:          fileOffset,
		TotalCompressedSize: totalCompressedSize,
		Ordinal:             int16(len(w.rowGroups)),
	})
	w.numRows += w.buffer.NumRows()
	w.buffer.Reset()
	return nil
}

// Close flushes the buffered rows and writes the file footer. The method is
// idempotent: closing an already closed writer does nothing.
//
// If the writer became unusable after a write error, Close returns that
// error without writing a footer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	if err := w.Flush(); err != nil {
		w.closed = true
		return err
	}
	w.closed = true

	// An empty file still carries the magic header, an empty footer, and
	// the magic trailer.
	if err := w.writeMagic(); err != nil {
		return err
	}

	metadata := make([]format.KeyValue, 0, len(w.metadata))
	for k, v := range w.metadata {
		metadata = append(metadata, format.KeyValue{Key: k, Value: v})
	}
	format.SortKeyValueMetadata(metadata)

	footer := format.FileMetaData{
		Version:          1,
		Schema:           w.schema.elements(),
		NumRows:          w.numRows,
		RowGroups:        w.rowGroups,
		KeyValueMetadata: metadata,
		CreatedBy:        w.config.CreatedBy,
	}

	footerData, err := thrift.Marshal(&w.protocol, &footer)
	if err != nil {
		w.err = fmt.Errorf("encoding parquet file metadata: %w", err)
		return w.err
	}

	if err := w.write(footerData); err != nil {
		return err
	}

	length := [4]byte{}
	binary.LittleEndian.PutUint32(length[:], uint32(len(footerData)))
	if err := w.write(length[:]); err != nil {
		return err
	}
	return w.write([]byte(magic))
}

func (w *Writer) writeMagic() error {
	if w.offset == 0 {
		return w.write([]byte(magic))
	}
	return nil
}

func (w *Writer) write(data []byte) error {
	n, err := w.writer.Write(data)
	w.offset += int64(n)
	if err != nil {
		w.err = fmt.Errorf("writing to parquet output: %w", err)
		return w.err
	}
	return nil
}
