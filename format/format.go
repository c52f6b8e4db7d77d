// Package format defines the data types serialized in the metadata sections
// of parquet files, mirroring the definitions of parquet.thrift.
//
// The types are marshaled and unmarshaled with the thrift compact protocol
// implemented by github.com/segmentio/encoding/thrift.
package format

import (
	"fmt"
	"sort"
)

// Type is the set of physical types used to store values in parquet files.
type Type int32

const (
	Boolean           Type = 0
	Int32             Type = 1
	Int64             Type = 2
	Int96             Type = 3
	Float             Type = 4
	Double            Type = 5
	ByteArray         Type = 6
	FixedLenByteArray Type = 7
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// ConvertedType is the deprecated annotation mechanism layering logical types
// over the physical types; it remains the interoperable one and is the one
// this package serializes.
type ConvertedType int32

const (
	UTF8            ConvertedType = 0
	Map             ConvertedType = 1
	MapKeyValue     ConvertedType = 2
	List            ConvertedType = 3
	Enum            ConvertedType = 4
	Decimal         ConvertedType = 5
	Date            ConvertedType = 6
	TimeMillis      ConvertedType = 7
	TimeMicros      ConvertedType = 8
	TimestampMillis ConvertedType = 9
	TimestampMicros ConvertedType = 10
	Uint8           ConvertedType = 11
	Uint16          ConvertedType = 12
	Uint32          ConvertedType = 13
	Uint64          ConvertedType = 14
	Int8            ConvertedType = 15
	Int16           ConvertedType = 16
	IntType32       ConvertedType = 17
	IntType64       ConvertedType = 18
	Json            ConvertedType = 19
	Bson            ConvertedType = 20
	Interval        ConvertedType = 21
)

func (t ConvertedType) String() string {
	switch t {
	case UTF8:
		return "UTF8"
	case Date:
		return "DATE"
	case TimeMillis:
		return "TIME_MILLIS"
	case TimeMicros:
		return "TIME_MICROS"
	case TimestampMillis:
		return "TIMESTAMP_MILLIS"
	case TimestampMicros:
		return "TIMESTAMP_MICROS"
	case Json:
		return "JSON"
	case Bson:
		return "BSON"
	case Interval:
		return "INTERVAL"
	default:
		return fmt.Sprintf("ConvertedType(%d)", int32(t))
	}
}

// FieldRepetitionType indicates how often a field may appear in a record.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = 0
	Optional FieldRepetitionType = 1
	Repeated FieldRepetitionType = 2
)

func (t FieldRepetitionType) String() string {
	switch t {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("FieldRepetitionType(%d)", int32(t))
	}
}

// Encoding is the set of value encodings defined by the parquet format.
type Encoding int32

const (
	Plain Encoding = 0
	// 1 was the BIT_PACKED encoding for levels, deprecated in favor of RLE.
	PlainDictionary      Encoding = 2
	RLE                  Encoding = 3
	BitPacked            Encoding = 4
	DeltaBinaryPacked    Encoding = 5
	DeltaLengthByteArray Encoding = 6
	DeltaByteArray       Encoding = 7
	RLEDictionary        Encoding = 8
	ByteStreamSplit      Encoding = 9
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case PlainDictionary:
		return "PLAIN_DICTIONARY"
	case RLE:
		return "RLE"
	case BitPacked:
		return "BIT_PACKED"
	case DeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case DeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case DeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case RLEDictionary:
		return "RLE_DICTIONARY"
	case ByteStreamSplit:
		return "BYTE_STREAM_SPLIT"
	default:
		return fmt.Sprintf("Encoding(%d)", int32(e))
	}
}

// CompressionCodec is the set of compression algorithms recognized in column
// chunk metadata.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
	Gzip         CompressionCodec = 2
	Lzo          CompressionCodec = 3
	Brotli       CompressionCodec = 4
	Lz4          CompressionCodec = 5
	Zstd         CompressionCodec = 6
	Lz4Raw       CompressionCodec = 7
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case Lzo:
		return "LZO"
	case Brotli:
		return "BROTLI"
	case Lz4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	case Lz4Raw:
		return "LZ4_RAW"
	default:
		return fmt.Sprintf("CompressionCodec(%d)", int32(c))
	}
}

// PageType distinguishes the kinds of pages found in column chunks.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

func (t PageType) String() string {
	switch t {
	case DataPage:
		return "DATA_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case DataPageV2:
		return "DATA_PAGE_V2"
	default:
		return fmt.Sprintf("PageType(%d)", int32(t))
	}
}

// SchemaElement is one node of the schema tree, serialized in depth-first
// order with each element carrying the number of its direct children.
type SchemaElement struct {
	Type           *Type                `thrift:"1,optional"`
	TypeLength     *int32               `thrift:"2,optional"`
	RepetitionType *FieldRepetitionType `thrift:"3,optional"`
	Name           string               `thrift:"4,required"`
	NumChildren    int32                `thrift:"5,optional"`
	ConvertedType  *ConvertedType       `thrift:"6,optional"`
	Scale          *int32               `thrift:"7,optional"`
	Precision      *int32               `thrift:"8,optional"`
	FieldID        int32                `thrift:"9,optional"`
}

// Statistics carries per-page or per-chunk value statistics.
//
// Min and Max are the deprecated unsigned-comparison fields; MinValue and
// MaxValue are their replacements ordered by the column's logical type. Both
// pairs are populated when writing for the benefit of older readers.
type Statistics struct {
	Max           []byte `thrift:"1,optional"`
	Min           []byte `thrift:"2,optional"`
	NullCount     int64  `thrift:"3,optional"`
	DistinctCount int64  `thrift:"4,optional"`
	MaxValue      []byte `thrift:"5,optional"`
	MinValue      []byte `thrift:"6,optional"`
}

// DataPageHeader describes a version 1 data page.
type DataPageHeader struct {
	NumValues               int32      `thrift:"1,required"`
	Encoding                Encoding   `thrift:"2,required"`
	DefinitionLevelEncoding Encoding   `thrift:"3,required"`
	RepetitionLevelEncoding Encoding   `thrift:"4,required"`
	Statistics              Statistics `thrift:"5,optional"`
}

// IndexPageHeader describes an index page; the layout is not formalized by
// the parquet specification.
type IndexPageHeader struct{}

// DictionaryPageHeader describes a dictionary page holding the values
// referenced by RLE_DICTIONARY encoded data pages.
type DictionaryPageHeader struct {
	NumValues int32    `thrift:"1,required"`
	Encoding  Encoding `thrift:"2,required"`
	IsSorted  bool     `thrift:"3,optional"`
}

// DataPageHeaderV2 describes a version 2 data page. The repetition and
// definition level sections are stored uncompressed ahead of the page data,
// and only the data section is subject to the chunk's compression codec when
// IsCompressed is set.
//
// IsCompressed defaults to true in the thrift definition, so the field is a
// pointer to distinguish an absent value from an explicit false.
type DataPageHeaderV2 struct {
	NumValues                  int32      `thrift:"1,required"`
	NumNulls                   int32      `thrift:"2,required"`
	NumRows                    int32      `thrift:"3,required"`
	Encoding                   Encoding   `thrift:"4,required"`
	DefinitionLevelsByteLength int32      `thrift:"5,required"`
	RepetitionLevelsByteLength int32      `thrift:"6,required"`
	IsCompressed               *bool      `thrift:"7,optional"`
	Statistics                 Statistics `thrift:"8,optional"`
}

// PageIsCompressed reports whether a v2 data page header declares its data
// section compressed; an absent field means compressed.
func (h *DataPageHeaderV2) PageIsCompressed() bool {
	return h.IsCompressed == nil || *h.IsCompressed
}

// PageHeader prefixes every page of a column chunk.
type PageHeader struct {
	Type                 PageType              `thrift:"1,required"`
	UncompressedPageSize int32                 `thrift:"2,required"`
	CompressedPageSize   int32                 `thrift:"3,required"`
	CRC                  int32                 `thrift:"4,optional"`
	DataPageHeader       *DataPageHeader       `thrift:"5,optional"`
	IndexPageHeader      *IndexPageHeader      `thrift:"6,optional"`
	DictionaryPageHeader *DictionaryPageHeader `thrift:"7,optional"`
	DataPageHeaderV2     *DataPageHeaderV2     `thrift:"8,optional"`
}

// KeyValue is an entry of the user key/value metadata list.
type KeyValue struct {
	Key   string `thrift:"1,required"`
	Value string `thrift:"2,optional"`
}

// SortingColumn describes one criterion of a row group's sort order.
type SortingColumn struct {
	ColumnIdx  int32 `thrift:"1,required"`
	Descending bool  `thrift:"2,required"`
	NullsFirst bool  `thrift:"3,required"`
}

// PageEncodingStats counts pages of a column chunk per type and encoding.
type PageEncodingStats struct {
	PageType PageType `thrift:"1,required"`
	Encoding Encoding `thrift:"2,required"`
	Count    int32    `thrift:"3,required"`
}

// ColumnMetaData describes one column chunk of a row group.
type ColumnMetaData struct {
	Type                  Type                `thrift:"1,required"`
	Encoding              []Encoding          `thrift:"2,required"`
	PathInSchema          []string            `thrift:"3,required"`
	Codec                 CompressionCodec    `thrift:"4,required"`
	NumValues             int64               `thrift:"5,required"`
	TotalUncompressedSize int64               `thrift:"6,required"`
	TotalCompressedSize   int64               `thrift:"7,required"`
	KeyValueMetadata      []KeyValue          `thrift:"8,optional"`
	DataPageOffset        int64               `thrift:"9,required"`
	IndexPageOffset       int64               `thrift:"10,optional"`
	DictionaryPageOffset  int64               `thrift:"11,optional"`
	Statistics            Statistics          `thrift:"12,optional"`
	EncodingStats         []PageEncodingStats `thrift:"13,optional"`
	BloomFilterOffset     int64               `thrift:"14,optional"`
}

// ColumnChunk ties a column of a row group to its metadata.
type ColumnChunk struct {
	FilePath          string         `thrift:"1,optional"`
	FileOffset        int64          `thrift:"2,required"`
	MetaData          ColumnMetaData `thrift:"3,optional"`
	OffsetIndexOffset int64          `thrift:"4,optional"`
	OffsetIndexLength int32          `thrift:"5,optional"`
	ColumnIndexOffset int64          `thrift:"6,optional"`
	ColumnIndexLength int32          `thrift:"7,optional"`
}

// RowGroup is a horizontal partition of the file, one column chunk per leaf
// column of the schema.
type RowGroup struct {
	Columns             []ColumnChunk   `thrift:"1,required"`
	TotalByteSize       int64           `thrift:"2,required"`
	NumRows             int64           `thrift:"3,required"`
	SortingColumns      []SortingColumn `thrift:"4,optional"`
	FileOffset          int64           `thrift:"5,optional"`
	TotalCompressedSize int64           `thrift:"6,optional"`
	Ordinal             int16           `thrift:"7,optional"`
}

// FileMetaData is the footer of a parquet file.
type FileMetaData struct {
	Version          int32           `thrift:"1,required"`
	Schema           []SchemaElement `thrift:"2,required"`
	NumRows          int64           `thrift:"3,required"`
	RowGroups        []RowGroup      `thrift:"4,required"`
	KeyValueMetadata []KeyValue      `thrift:"5,optional"`
	CreatedBy        string          `thrift:"6,optional"`
}

// SortKeyValueMetadata sorts the slice of KeyValueMetadata entries.
func SortKeyValueMetadata(kv []KeyValue) {
	sort.Slice(kv, func(i, j int) bool {
		switch {
		case kv[i].Key < kv[j].Key:
			return true
		case kv[i].Key > kv[j].Key:
			return false
		default:
			return kv[i].Value < kv[j].Value
		}
	})
}
