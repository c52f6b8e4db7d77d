package parquets

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dobesv/parquets/format"
	"github.com/segmentio/encoding/thrift"
)

const magic = "PAR1"

// File represents a parquet file opened for reading. The layout of a
// parquet file can be found here:
// https://github.com/apache/parquet-format#file-format
//
// Opening a file reads only the magic bytes and the footer; column chunks
// are fetched lazily by the cursors created from the file. The file owns
// the byte source for its lifetime: Close is idempotent and closes the
// source when it implements io.Closer.
type File struct {
	metadata   format.FileMetaData
	protocol   thrift.CompactProtocol
	reader     io.ReaderAt
	size       int64
	schema     *Schema
	chunkIndex map[string]int
	closed     bool
}

// OpenFile opens a parquet file, reading the content between offset 0 and
// the given size in r.
func OpenFile(r io.ReaderAt, size int64) (*File, error) {
	b := make([]byte, 8)
	f := &File{reader: r, size: size}

	if size < 12 {
		return nil, fmt.Errorf("parquet file of %d bytes is too small to hold the magic bytes and a footer: %w", size, ErrCorrupted)
	}

	if _, err := r.ReadAt(b[:4], 0); err != nil {
		return nil, fmt.Errorf("reading magic header of parquet file: %w", err)
	}
	if string(b[:4]) != magic {
		return nil, fmt.Errorf("invalid magic header of parquet file: %q: %w", b[:4], ErrCorrupted)
	}

	if _, err := r.ReadAt(b[:8], size-8); err != nil {
		return nil, fmt.Errorf("reading magic footer of parquet file: %w", err)
	}
	if string(b[4:8]) != magic {
		return nil, fmt.Errorf("invalid magic footer of parquet file: %q: %w", b[4:8], ErrCorrupted)
	}

	footerSize := int64(binary.LittleEndian.Uint32(b[:4]))
	metadataOffset := size - (footerSize + 8)
	if metadataOffset < 4 {
		return nil, fmt.Errorf("parquet file metadata of %d bytes does not fit in a file of %d bytes: %w", footerSize, size, ErrCorrupted)
	}

	footerData := make([]byte, footerSize)
	if _, err := f.reader.ReadAt(footerData, metadataOffset); err != nil {
		return nil, fmt.Errorf("reading footer of parquet file: %w", err)
	}
	if err := thrift.Unmarshal(&f.protocol, footerData, &f.metadata); err != nil {
		return nil, fmt.Errorf("reading parquet file metadata: %w (%s)", ErrCorrupted, err)
	}
	if len(f.metadata.Schema) == 0 {
		return nil, ErrMissingRootColumn
	}

	schema, err := schemaFromElements(f.metadata.Schema)
	if err != nil {
		return nil, fmt.Errorf("reading schema of parquet file: %w", err)
	}
	f.schema = schema

	if err := f.indexColumnChunks(); err != nil {
		return nil, err
	}

	format.SortKeyValueMetadata(f.metadata.KeyValueMetadata)
	return f, nil
}

// indexColumnChunks maps leaf column paths to their chunk position within
// row groups. Files always lay chunks out in the same column order in every
// row group.
func (f *File) indexColumnChunks() error {
	f.chunkIndex = make(map[string]int)
	if len(f.metadata.RowGroups) == 0 {
		return nil
	}
	for i, chunk := range f.metadata.RowGroups[0].Columns {
		f.chunkIndex[strings.Join(chunk.MetaData.PathInSchema, ".")] = i
	}
	for _, col := range f.schema.Columns() {
		if _, ok := f.chunkIndex[col.pathString()]; !ok {
			return fmt.Errorf("no column chunk at path %q in row groups: %w", col.pathString(), ErrCorrupted)
		}
	}
	return nil
}

// NumRows returns the number of rows in the file.
func (f *File) NumRows() int64 { return f.metadata.NumRows }

// NumRowGroups returns the number of row groups in the file.
func (f *File) NumRowGroups() int { return len(f.metadata.RowGroups) }

// Schema returns the schema of f.
func (f *File) Schema() *Schema { return f.schema }

// Size returns the size of f (in bytes).
func (f *File) Size() int64 { return f.size }

// CreatedBy returns the name of the application that wrote f.
func (f *File) CreatedBy() string { return f.metadata.CreatedBy }

// Metadata returns the user key/value metadata of f, sorted by key.
//
// The method returns the same slice across multiple calls, the program must
// treat it as a read-only value.
func (f *File) Metadata() []format.KeyValue { return f.metadata.KeyValueMetadata }

// Lookup returns the value associated with the given key in the file
// key/value metadata.
//
// The ok boolean will be true if the key was found, false otherwise.
func (f *File) Lookup(key string) (value string, ok bool) {
	kv := f.metadata.KeyValueMetadata
	i := sort.Search(len(kv), func(i int) bool {
		return kv[i].Key >= key
	})
	if i == len(kv) || kv[i].Key != key {
		return "", false
	}
	return kv[i].Value, true
}

// Close releases the file. The method is idempotent; if the underlying byte
// source implements io.Closer it is closed on the first call.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if c, ok := f.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// readColumnChunk fetches and decodes the chunk of col within the given row
// group.
func (f *File) readColumnChunk(rowGroup int, col *Column) (*ColumnStream, error) {
	chunkIndex, ok := f.chunkIndex[col.pathString()]
	if !ok || chunkIndex >= len(f.metadata.RowGroups[rowGroup].Columns) {
		return nil, fmt.Errorf("no column chunk at path %q in row group %d: %w", col.pathString(), rowGroup, ErrCorrupted)
	}
	chunk := &f.metadata.RowGroups[rowGroup].Columns[chunkIndex]
	meta := &chunk.MetaData

	if meta.DictionaryPageOffset != 0 {
		return nil, fmt.Errorf("column %q carries a dictionary page: %w", col.pathString(), ErrUnsupported)
	}

	offset := meta.DataPageOffset
	size := meta.TotalCompressedSize
	if offset < 4 || size < 0 || offset+size > f.size {
		return nil, fmt.Errorf("column chunk of %d bytes at offset %d lies outside the file: %w", size, offset, ErrCorrupted)
	}

	data := make([]byte, size)
	if _, err := f.reader.ReadAt(data, offset); err != nil {
		return nil, fmt.Errorf("reading column chunk of %q: %w", col.pathString(), err)
	}
	return decodeColumnChunk(col, data, meta)
}
