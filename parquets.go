// Package parquets implements reading and writing of parquet files around
// the Dremel record shredding and assembly model: nested records are
// decomposed into per-column sequences of values, definition levels and
// repetition levels, and reconstructed from them exactly.
//
// Records are dynamic values of type Record; their shape is described by a
// Schema built from Group and leaf nodes:
//
//	schema := parquets.MustSchema("document", parquets.Group{
//		"id":   parquets.Leaf(parquets.Int64Type),
//		"name": parquets.Optional(parquets.String()),
//		"tags": parquets.Repeated(parquets.String()),
//	})
//
//	w, err := parquets.NewWriter(output, schema,
//		parquets.Compression(parquets.Snappy))
//
// Writers shred records into row groups of column chunks; readers fetch
// row groups lazily and assemble records, whole rows or one column at a
// time.
package parquets

// Record is the dynamic representation of a parquet row: a mapping from
// field names to scalars, nested records, or slices for repeated fields.
// Absent optional fields are simply missing keys.
type Record = map[string]interface{}
