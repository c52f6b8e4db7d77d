package parquets

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dobesv/parquets/compress"
	"github.com/dobesv/parquets/encoding/plain"
	"github.com/dobesv/parquets/encoding/rle"
	"github.com/dobesv/parquets/format"
	"github.com/dobesv/parquets/internal/bits"
	"github.com/segmentio/encoding/thrift"
)

// columnChunk is the serialized form of one leaf column within a row group:
// the concatenation of its pages, each prefixed by a thrift compact page
// header, plus the chunk metadata recorded in the footer.
type columnChunk struct {
	data []byte
	meta format.ColumnMetaData
}

// pageSpan delimits the stream positions and values of one data page.
type pageSpan struct {
	levelStart int
	levelEnd   int
	valueStart int
	valueEnd   int
	numRows    int
}

// splitPages cuts the stream of col at row boundaries so that no page spans
// more than pageRowLimit rows. Row boundaries are the positions with a
// repetition level of zero.
func splitPages(col *Column, stream *ColumnStream, pageRowLimit int) []pageSpan {
	spans := []pageSpan{}
	span := pageSpan{}
	values := 0

	for i, r := range stream.repetitionLevels {
		if r == 0 && span.numRows == pageRowLimit {
			span.levelEnd = i
			span.valueEnd = values
			spans = append(spans, span)
			span = pageSpan{levelStart: i, valueStart: values}
		}
		if r == 0 {
			span.numRows++
		}
		if stream.definitionLevels[i] == col.maxDefinitionLevel {
			values++
		}
	}

	span.levelEnd = len(stream.repetitionLevels)
	span.valueEnd = values
	if span.levelEnd > span.levelStart {
		spans = append(spans, span)
	}
	return spans
}

// encodeColumnChunk serializes the pages of one column chunk from the
// streams buffered in cb, compressing them with the given codec.
//
// The DataPageOffset of the returned metadata is left zero; the writer
// fills in the absolute position of the chunk in the file.
func encodeColumnChunk(cb *columnBuffer, codec compress.Codec, dataPageVersion, pageRowLimit int) (*columnChunk, error) {
	col := cb.column
	protocol := thrift.CompactProtocol{}
	chunk := &columnChunk{}
	totalUncompressedSize := int64(0)
	totalCompressedSize := int64(0)

	for _, span := range splitPages(col, &cb.ColumnStream, pageRowLimit) {
		var header format.PageHeader
		var pageData []byte

		values, err := encodePlainValues(col, cb.values[span.valueStart:span.valueEnd])
		if err != nil {
			return nil, fmt.Errorf("encoding values of column %q: %w", col.pathString(), err)
		}

		repetitionLevels := cb.repetitionLevels[span.levelStart:span.levelEnd]
		definitionLevels := cb.definitionLevels[span.levelStart:span.levelEnd]

		switch dataPageVersion {
		case 1:
			body := []byte{}
			if col.maxRepetitionLevel > 0 {
				if body, err = rle.EncodeInt32LengthPrefixed(body, repetitionLevels, levelBitWidth(col.maxRepetitionLevel)); err != nil {
					return nil, fmt.Errorf("encoding repetition levels of column %q: %w", col.pathString(), err)
				}
			}
			if col.maxDefinitionLevel > 0 {
				if body, err = rle.EncodeInt32LengthPrefixed(body, definitionLevels, levelBitWidth(col.maxDefinitionLevel)); err != nil {
					return nil, fmt.Errorf("encoding definition levels of column %q: %w", col.pathString(), err)
				}
			}
			body = append(body, values...)

			compressed, err := codec.Encode(nil, body)
			if err != nil {
				return nil, fmt.Errorf("compressing page of column %q: %w", col.pathString(), err)
			}

			header = format.PageHeader{
				Type:                 format.DataPage,
				UncompressedPageSize: int32(len(body)),
				CompressedPageSize:   int32(len(compressed)),
				DataPageHeader: &format.DataPageHeader{
					NumValues:               int32(span.levelEnd - span.levelStart),
					Encoding:                format.Plain,
					DefinitionLevelEncoding: format.RLE,
					RepetitionLevelEncoding: format.RLE,
				},
			}
			pageData = compressed

		case 2:
			levels := []byte{}
			repetitionLevelsByteLength := 0
			if col.maxRepetitionLevel > 0 {
				if levels, err = rle.EncodeInt32(levels, repetitionLevels, levelBitWidth(col.maxRepetitionLevel)); err != nil {
					return nil, fmt.Errorf("encoding repetition levels of column %q: %w", col.pathString(), err)
				}
				repetitionLevelsByteLength = len(levels)
			}
			definitionLevelsByteLength := 0
			if col.maxDefinitionLevel > 0 {
				if levels, err = rle.EncodeInt32(levels, definitionLevels, levelBitWidth(col.maxDefinitionLevel)); err != nil {
					return nil, fmt.Errorf("encoding definition levels of column %q: %w", col.pathString(), err)
				}
				definitionLevelsByteLength = len(levels) - repetitionLevelsByteLength
			}

			isCompressed := codec.CompressionCodec() != format.Uncompressed
			data := values
			if isCompressed {
				if data, err = codec.Encode(nil, values); err != nil {
					return nil, fmt.Errorf("compressing page of column %q: %w", col.pathString(), err)
				}
			}

			numValues := span.levelEnd - span.levelStart
			header = format.PageHeader{
				Type:                 format.DataPageV2,
				UncompressedPageSize: int32(len(levels) + len(values)),
				CompressedPageSize:   int32(len(levels) + len(data)),
				DataPageHeaderV2: &format.DataPageHeaderV2{
					NumValues:                  int32(numValues),
					NumNulls:                   int32(numValues - (span.valueEnd - span.valueStart)),
					NumRows:                    int32(span.numRows),
					Encoding:                   format.Plain,
					DefinitionLevelsByteLength: int32(definitionLevelsByteLength),
					RepetitionLevelsByteLength: int32(repetitionLevelsByteLength),
					IsCompressed:               &isCompressed,
				},
			}
			pageData = append(levels, data...)

		default:
			return nil, fmt.Errorf("unsupported data page version %d: %w", dataPageVersion, ErrInvalidConfig)
		}

		headerData, err := thrift.Marshal(&protocol, &header)
		if err != nil {
			return nil, fmt.Errorf("encoding page header of column %q: %w", col.pathString(), err)
		}

		chunk.data = append(chunk.data, headerData...)
		chunk.data = append(chunk.data, pageData...)
		totalUncompressedSize += int64(len(headerData)) + int64(header.UncompressedPageSize)
		totalCompressedSize += int64(len(headerData)) + int64(header.CompressedPageSize)
	}

	chunk.meta = format.ColumnMetaData{
		Type:                  col.typ.Kind().PhysicalType(),
		Encoding:              []format.Encoding{format.RLE, format.Plain},
		PathInSchema:          col.path,
		Codec:                 codec.CompressionCodec(),
		NumValues:             int64(cb.NumLevels()),
		TotalUncompressedSize: totalUncompressedSize,
		TotalCompressedSize:   totalCompressedSize,
		Statistics:            cb.stats.statistics(),
	}
	return chunk, nil
}

// decodeColumnChunk reads back the pages of a column chunk, looping until
// the chunk's compressed size is exhausted, and concatenates their level
// and value sequences into a single column stream.
func decodeColumnChunk(col *Column, data []byte, meta *format.ColumnMetaData) (*ColumnStream, error) {
	codec, err := LookupCompressionCodec(meta.Codec)
	if err != nil {
		return nil, fmt.Errorf("reading column %q: %w", col.pathString(), err)
	}

	stream := &ColumnStream{}
	reader := bytes.NewReader(data)
	protocol := thrift.CompactProtocol{}
	decoder := thrift.NewDecoder(protocol.NewReader(reader))

	for reader.Len() > 0 {
		header := format.PageHeader{}
		if err := decoder.Decode(&header); err != nil {
			return nil, fmt.Errorf("decoding page header of column %q: %w (%s)", col.pathString(), ErrCorrupted, err)
		}
		if header.CompressedPageSize < 0 || int(header.CompressedPageSize) > reader.Len() {
			return nil, fmt.Errorf("page of column %q declares %d compressed bytes but only %d remain in the chunk: %w",
				col.pathString(), header.CompressedPageSize, reader.Len(), ErrCorrupted)
		}

		body := make([]byte, int(header.CompressedPageSize))
		if _, err := io.ReadFull(reader, body); err != nil {
			return nil, fmt.Errorf("reading page of column %q: %w", col.pathString(), err)
		}

		switch header.Type {
		case format.DataPage:
			err = decodeDataPageV1(col, codec, &header, body, stream)
		case format.DataPageV2:
			err = decodeDataPageV2(col, codec, &header, body, stream)
		case format.DictionaryPage, format.IndexPage:
			err = fmt.Errorf("cannot read %s pages: %w", header.Type, ErrUnsupported)
		default:
			err = fmt.Errorf("unknown page type %d: %w", header.Type, ErrCorrupted)
		}
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.pathString(), err)
		}
	}

	if int64(stream.NumLevels()) != meta.NumValues {
		return nil, fmt.Errorf("column %q declares %d values but its pages hold %d: %w",
			col.pathString(), meta.NumValues, stream.NumLevels(), ErrCorrupted)
	}
	return stream, nil
}

func decodeDataPageV1(col *Column, codec compress.Codec, header *format.PageHeader, body []byte, stream *ColumnStream) error {
	h := header.DataPageHeader
	if h == nil {
		return fmt.Errorf("data page carries no v1 header: %w", ErrCorrupted)
	}
	if err := checkPageEncoding(h.Encoding); err != nil {
		return err
	}
	if col.maxRepetitionLevel > 0 && h.RepetitionLevelEncoding != format.RLE {
		return fmt.Errorf("repetition levels use the %s encoding: %w", h.RepetitionLevelEncoding, ErrUnsupported)
	}
	if col.maxDefinitionLevel > 0 && h.DefinitionLevelEncoding != format.RLE {
		return fmt.Errorf("definition levels use the %s encoding: %w", h.DefinitionLevelEncoding, ErrUnsupported)
	}

	body, err := codec.Decode(make([]byte, 0, int(header.UncompressedPageSize)), body)
	if err != nil {
		return fmt.Errorf("decompressing page: %w (%s)", ErrCorrupted, err)
	}
	if len(body) != int(header.UncompressedPageSize) {
		return fmt.Errorf("page decompressed to %d bytes instead of %d: %w", len(body), header.UncompressedPageSize, ErrCorrupted)
	}

	count := int(h.NumValues)
	rest := body

	var repetitionLevels, definitionLevels []int32
	if col.maxRepetitionLevel > 0 {
		if repetitionLevels, rest, err = decodeLevelsPrefixed(rest, col.maxRepetitionLevel, count); err != nil {
			return fmt.Errorf("decoding repetition levels: %w", err)
		}
	} else {
		repetitionLevels = make([]int32, count)
	}
	if col.maxDefinitionLevel > 0 {
		if definitionLevels, rest, err = decodeLevelsPrefixed(rest, col.maxDefinitionLevel, count); err != nil {
			return fmt.Errorf("decoding definition levels: %w", err)
		}
	} else {
		definitionLevels = make([]int32, count)
	}

	numValues := bits.CountInt32(definitionLevels, col.maxDefinitionLevel)
	values, err := decodePlainValues(col, rest, numValues)
	if err != nil {
		return err
	}

	stream.repetitionLevels = append(stream.repetitionLevels, repetitionLevels...)
	stream.definitionLevels = append(stream.definitionLevels, definitionLevels...)
	stream.values = append(stream.values, values...)
	return nil
}

func decodeDataPageV2(col *Column, codec compress.Codec, header *format.PageHeader, body []byte, stream *ColumnStream) error {
	h := header.DataPageHeaderV2
	if h == nil {
		return fmt.Errorf("data page carries no v2 header: %w", ErrCorrupted)
	}
	if err := checkPageEncoding(h.Encoding); err != nil {
		return err
	}

	repetitionLevelsByteLength := int(h.RepetitionLevelsByteLength)
	definitionLevelsByteLength := int(h.DefinitionLevelsByteLength)
	if repetitionLevelsByteLength < 0 || definitionLevelsByteLength < 0 ||
		repetitionLevelsByteLength+definitionLevelsByteLength > len(body) {
		return fmt.Errorf("level sections of %d+%d bytes exceed the %d byte page: %w",
			repetitionLevelsByteLength, definitionLevelsByteLength, len(body), ErrCorrupted)
	}

	count := int(h.NumValues)

	repetitionLevels, err := decodeLevelsRaw(body[:repetitionLevelsByteLength], col.maxRepetitionLevel, count)
	if err != nil {
		return fmt.Errorf("decoding repetition levels: %w", err)
	}
	definitionLevels, err := decodeLevelsRaw(body[repetitionLevelsByteLength:repetitionLevelsByteLength+definitionLevelsByteLength], col.maxDefinitionLevel, count)
	if err != nil {
		return fmt.Errorf("decoding definition levels: %w", err)
	}

	data := body[repetitionLevelsByteLength+definitionLevelsByteLength:]
	if h.PageIsCompressed() && codec.CompressionCodec() != format.Uncompressed {
		size := int(header.UncompressedPageSize) - repetitionLevelsByteLength - definitionLevelsByteLength
		if size < 0 {
			return fmt.Errorf("page declares %d uncompressed bytes but %d bytes of levels: %w",
				header.UncompressedPageSize, repetitionLevelsByteLength+definitionLevelsByteLength, ErrCorrupted)
		}
		if data, err = codec.Decode(make([]byte, 0, size), data); err != nil {
			return fmt.Errorf("decompressing page: %w (%s)", ErrCorrupted, err)
		}
	}

	numValues := bits.CountInt32(definitionLevels, col.maxDefinitionLevel)
	values, err := decodePlainValues(col, data, numValues)
	if err != nil {
		return err
	}

	stream.repetitionLevels = append(stream.repetitionLevels, repetitionLevels...)
	stream.definitionLevels = append(stream.definitionLevels, definitionLevels...)
	stream.values = append(stream.values, values...)
	return nil
}

func checkPageEncoding(encoding format.Encoding) error {
	switch encoding {
	case format.Plain:
		return nil
	default:
		return fmt.Errorf("data page uses the %s encoding: %w", encoding, ErrUnsupported)
	}
}

// decodeLevelsPrefixed reads the length-prefixed level section framing of
// data pages v1, returning the levels and the rest of the page body.
func decodeLevelsPrefixed(src []byte, maxLevel int32, count int) ([]int32, []byte, error) {
	levels, rest, err := rle.DecodeInt32LengthPrefixed(make([]int32, 0, count), src, levelBitWidth(maxLevel))
	if err != nil {
		return nil, src, fmt.Errorf("%w (%s)", ErrCorrupted, err)
	}
	levels, err = trimLevels(levels, count)
	return levels, rest, err
}

// decodeLevelsRaw reads the raw level section framing of data pages v2. A
// maximum level of zero means the section is empty and every level is zero.
func decodeLevelsRaw(src []byte, maxLevel int32, count int) ([]int32, error) {
	if maxLevel == 0 {
		if len(src) != 0 {
			return nil, fmt.Errorf("level section of %d bytes for a column without levels: %w", len(src), ErrCorrupted)
		}
		return make([]int32, count), nil
	}
	levels, err := rle.DecodeInt32(make([]int32, 0, count), src, levelBitWidth(maxLevel))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrCorrupted, err)
	}
	return trimLevels(levels, count)
}

// trimLevels truncates the decoded levels to count, tolerating only the
// padding of the trailing bit-packed group.
func trimLevels(levels []int32, count int) ([]int32, error) {
	if len(levels) < count {
		return nil, fmt.Errorf("level section holds %d values instead of %d: %w", len(levels), count, ErrCorrupted)
	}
	if len(levels) >= count+8 {
		return nil, fmt.Errorf("level section holds %d values instead of %d: %w", len(levels), count, ErrCorrupted)
	}
	return levels[:count], nil
}

func levelBitWidth(maxLevel int32) uint {
	return uint(bits.Len32(maxLevel))
}

// encodePlainValues serializes values with the PLAIN encoding of the
// column's physical type.
func encodePlainValues(col *Column, values []Value) ([]byte, error) {
	data := []byte{}

	switch col.typ.Kind() {
	case Boolean:
		for i, v := range values {
			data = plain.AppendBoolean(data, i, v.Boolean())
		}
	case Int32:
		for _, v := range values {
			data = plain.AppendInt32(data, v.Int32())
		}
	case Int64:
		for _, v := range values {
			data = plain.AppendInt64(data, v.Int64())
		}
	case Int96:
		for _, v := range values {
			data = plain.AppendInt96(data, v.Int96())
		}
	case Float:
		for _, v := range values {
			data = plain.AppendFloat(data, v.Float())
		}
	case Double:
		for _, v := range values {
			data = plain.AppendDouble(data, v.Double())
		}
	case ByteArray:
		for _, v := range values {
			data = plain.AppendByteArray(data, v.ByteArray())
		}
	default:
		for _, v := range values {
			data = append(data, v.ByteArray()...)
		}
	}

	return data, nil
}

// decodePlainValues deserializes exactly numValues values from the PLAIN
// representation of the column's physical type.
func decodePlainValues(col *Column, data []byte, numValues int) ([]Value, error) {
	values := make([]Value, 0, numValues)

	switch col.typ.Kind() {
	case Boolean:
		decoded, err := plain.DecodeBoolean(nil, data, numValues)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueBoolean(v))
		}
	case Int32:
		decoded, err := plain.DecodeInt32(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueInt32(v))
		}
	case Int64:
		decoded, err := plain.DecodeInt64(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueInt64(v))
		}
	case Int96:
		decoded, err := plain.DecodeInt96(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueInt96(v))
		}
	case Float:
		decoded, err := plain.DecodeFloat(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueFloat(v))
		}
	case Double:
		decoded, err := plain.DecodeDouble(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueDouble(v))
		}
	case ByteArray:
		decoded, err := plain.DecodeByteArray(nil, data)
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueBytes(ByteArray, v))
		}
	default:
		decoded, err := plain.DecodeFixedLenByteArray(nil, data, col.typ.Length())
		if err != nil {
			return nil, errValues(col, err)
		}
		for _, v := range decoded {
			values = append(values, makeValueBytes(FixedLenByteArray, v))
		}
	}

	if len(values) != numValues {
		return nil, fmt.Errorf("values section of column %q holds %d values instead of %d: %w",
			col.pathString(), len(values), numValues, ErrCorrupted)
	}
	return values, nil
}

func errValues(col *Column, err error) error {
	return fmt.Errorf("decoding values of column %q: %w (%s)", col.pathString(), ErrCorrupted, err)
}
