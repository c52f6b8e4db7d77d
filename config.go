package parquets

import (
	"fmt"
	"strings"

	"github.com/dobesv/parquets/compress"
)

const (
	DefaultCreatedBy        = "github.com/dobesv/parquets"
	DefaultDataPageVersion  = 1
	DefaultRowGroupRowLimit = 4096
	DefaultPageRowLimit     = 8192
)

// The WriterConfig type carries configuration options for parquet writers.
//
// WriterConfig implements the WriterOption interface so it can be used
// directly as argument to the NewWriter function when needed, for example:
//
//	writer, err := parquets.NewWriter(output, schema, &parquets.WriterConfig{
//		CreatedBy: "my test program",
//	})
type WriterConfig struct {
	CreatedBy        string
	Compression      compress.Codec
	DataPageVersion  int
	RowGroupRowLimit int64
	PageRowLimit     int
	KeyValueMetadata map[string]string
}

// DefaultWriterConfig returns a new WriterConfig value initialized with the
// default writer configuration.
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		CreatedBy:        DefaultCreatedBy,
		Compression:      Uncompressed,
		DataPageVersion:  DefaultDataPageVersion,
		RowGroupRowLimit: DefaultRowGroupRowLimit,
		PageRowLimit:     DefaultPageRowLimit,
	}
}

// NewWriterConfig constructs a new writer configuration applying the
// options passed as arguments.
func NewWriterConfig(options ...WriterOption) (*WriterConfig, error) {
	config := DefaultWriterConfig()
	config.Apply(options...)
	return config, config.Validate()
}

// Apply applies the given list of options to c.
func (c *WriterConfig) Apply(options ...WriterOption) {
	for _, opt := range options {
		opt.ConfigureWriter(c)
	}
}

// ConfigureWriter applies configuration options from c to config.
func (c *WriterConfig) ConfigureWriter(config *WriterConfig) {
	keyValueMetadata := config.KeyValueMetadata
	if len(c.KeyValueMetadata) > 0 {
		if keyValueMetadata == nil {
			keyValueMetadata = make(map[string]string, len(c.KeyValueMetadata))
		}
		for k, v := range c.KeyValueMetadata {
			keyValueMetadata[k] = v
		}
	}
	*config = WriterConfig{
		CreatedBy:        coalesceString(c.CreatedBy, config.CreatedBy),
		Compression:      coalesceCodec(c.Compression, config.Compression),
		DataPageVersion:  coalesceInt(c.DataPageVersion, config.DataPageVersion),
		RowGroupRowLimit: coalesceInt64(c.RowGroupRowLimit, config.RowGroupRowLimit),
		PageRowLimit:     coalesceInt(c.PageRowLimit, config.PageRowLimit),
		KeyValueMetadata: keyValueMetadata,
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *WriterConfig) Validate() error {
	const baseName = "parquets.(*WriterConfig)."
	return errorInvalidConfiguration(
		validateNotNil(baseName+"Compression", c.Compression != nil),
		validateOneOfInt(baseName+"DataPageVersion", c.DataPageVersion, 1, 2),
		validatePositiveInt64(baseName+"RowGroupRowLimit", c.RowGroupRowLimit),
		validatePositiveInt(baseName+"PageRowLimit", int64(c.PageRowLimit)),
	)
}

// WriterOption is an interface implemented by types carrying configuration
// options for parquet writers.
type WriterOption interface {
	ConfigureWriter(*WriterConfig)
}

type writerOption func(*WriterConfig)

func (opt writerOption) ConfigureWriter(config *WriterConfig) { opt(config) }

// CreatedBy creates a configuration option which sets the name of the
// application recorded in the footers of parquet files.
func CreatedBy(createdBy string) WriterOption {
	return writerOption(func(config *WriterConfig) { config.CreatedBy = createdBy })
}

// Compression creates a configuration option which sets the default
// compression codec of column chunks. Columns wrapped with Compressed keep
// their own codec.
func Compression(codec compress.Codec) WriterOption {
	return writerOption(func(config *WriterConfig) { config.Compression = codec })
}

// DataPageVersion creates a configuration option which selects the version
// of data pages written to files, 1 or 2.
func DataPageVersion(version int) WriterOption {
	return writerOption(func(config *WriterConfig) { config.DataPageVersion = version })
}

// RowGroupRowLimit creates a configuration option which sets the number of
// rows buffered before a row group is flushed.
func RowGroupRowLimit(numRows int64) WriterOption {
	return writerOption(func(config *WriterConfig) { config.RowGroupRowLimit = numRows })
}

// PageRowLimit creates a configuration option which sets the maximum number
// of rows held by a single data page.
func PageRowLimit(numRows int) WriterOption {
	return writerOption(func(config *WriterConfig) { config.PageRowLimit = numRows })
}

// KeyValueMetadata creates a configuration option which adds an entry to
// the user key/value metadata of the file footer.
func KeyValueMetadata(key, value string) WriterOption {
	return writerOption(func(config *WriterConfig) {
		if config.KeyValueMetadata == nil {
			config.KeyValueMetadata = map[string]string{key: value}
		} else {
			config.KeyValueMetadata[key] = value
		}
	})
}

// The ReaderConfig type carries configuration options for row cursors.
type ReaderConfig struct {
	// Columns restricts the cursor to the leaf columns at the given dotted
	// paths; an empty list selects every column.
	Columns []string
}

// DefaultReaderConfig returns a new ReaderConfig value initialized with the
// default reader configuration.
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{}
}

// NewReaderConfig constructs a new reader configuration applying the
// options passed as arguments.
func NewReaderConfig(options ...ReaderOption) (*ReaderConfig, error) {
	config := DefaultReaderConfig()
	config.Apply(options...)
	return config, config.Validate()
}

// Apply applies the given list of options to c.
func (c *ReaderConfig) Apply(options ...ReaderOption) {
	for _, opt := range options {
		opt.ConfigureReader(c)
	}
}

// ConfigureReader applies configuration options from c to config.
func (c *ReaderConfig) ConfigureReader(config *ReaderConfig) {
	*config = ReaderConfig{
		Columns: append(config.Columns, c.Columns...),
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *ReaderConfig) Validate() error {
	for _, path := range c.Columns {
		if path == "" {
			return fmt.Errorf("parquets.(*ReaderConfig).Columns: empty column path: %w", ErrInvalidConfig)
		}
	}
	return nil
}

// ReaderOption is an interface implemented by types carrying configuration
// options for row cursors.
type ReaderOption interface {
	ConfigureReader(*ReaderConfig)
}

type readerOption func(*ReaderConfig)

func (opt readerOption) ConfigureReader(config *ReaderConfig) { opt(config) }

// SelectColumns creates a configuration option which restricts a cursor to
// the leaf columns at the given dotted paths.
func SelectColumns(paths ...string) ReaderOption {
	return readerOption(func(config *ReaderConfig) {
		config.Columns = append(config.Columns, paths...)
	})
}

func coalesceString(s1, s2 string) string {
	if s1 != "" {
		return s1
	}
	return s2
}

func coalesceInt(i1, i2 int) int {
	if i1 != 0 {
		return i1
	}
	return i2
}

func coalesceInt64(i1, i2 int64) int64 {
	if i1 != 0 {
		return i1
	}
	return i2
}

func coalesceCodec(c1, c2 compress.Codec) compress.Codec {
	if c1 != nil {
		return c1
	}
	return c2
}

func validateNotNil(name string, ok bool) string {
	if ok {
		return ""
	}
	return name + " must not be nil"
}

func validatePositiveInt(name string, value int64) string {
	if value > 0 {
		return ""
	}
	return fmt.Sprintf("%s must be positive but is %d", name, value)
}

func validatePositiveInt64(name string, value int64) string {
	return validatePositiveInt(name, value)
}

func validateOneOfInt(name string, value int, choices ...int) string {
	for _, choice := range choices {
		if value == choice {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of %v but is %d", name, choices, value)
}

func errorInvalidConfiguration(reasons ...string) error {
	invalid := reasons[:0]
	for _, reason := range reasons {
		if reason != "" {
			invalid = append(invalid, reason)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", strings.Join(invalid, "; "), ErrInvalidConfig)
}
