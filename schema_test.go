package parquets_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dobesv/parquets"
)

// dremelSchema is the schema of the record shredding example in the Dremel
// paper.
func dremelSchema(t testing.TB) *parquets.Schema {
	t.Helper()
	return parquets.MustSchema("Document", parquets.Group{
		"DocId": parquets.Leaf(parquets.Int64Type),
		"Links": parquets.Optional(parquets.Group{
			"Backward": parquets.Repeated(parquets.Leaf(parquets.Int64Type)),
			"Forward":  parquets.Repeated(parquets.Leaf(parquets.Int64Type)),
		}),
		"Name": parquets.Repeated(parquets.Group{
			"Language": parquets.Repeated(parquets.Group{
				"Code":    parquets.String(),
				"Country": parquets.Optional(parquets.String()),
			}),
			"Url": parquets.Optional(parquets.String()),
		}),
	})
}

func TestSchemaLevels(t *testing.T) {
	schema := dremelSchema(t)

	tests := []struct {
		path   string
		maxDef int32
		maxRep int32
	}{
		{path: "DocId", maxDef: 0, maxRep: 0},
		{path: "Links.Backward", maxDef: 2, maxRep: 1},
		{path: "Links.Forward", maxDef: 2, maxRep: 1},
		{path: "Name.Language.Code", maxDef: 2, maxRep: 2},
		{path: "Name.Language.Country", maxDef: 3, maxRep: 2},
		{path: "Name.Url", maxDef: 2, maxRep: 1},
	}

	for _, test := range tests {
		col, ok := schema.Lookup(test.path)
		if !ok {
			t.Fatalf("column not found: %s", test.path)
		}
		if d := col.MaxDefinitionLevel(); d != test.maxDef {
			t.Errorf("%s: max definition level is %d, want %d", test.path, d, test.maxDef)
		}
		if r := col.MaxRepetitionLevel(); r != test.maxRep {
			t.Errorf("%s: max repetition level is %d, want %d", test.path, r, test.maxRep)
		}
	}

	if n := len(schema.Columns()); n != 6 {
		t.Errorf("schema has %d leaf columns, want 6", n)
	}

	paths := make([]string, 0, 6)
	for _, col := range schema.Columns() {
		paths = append(paths, pathString(col.Path()))
	}
	want := []string{
		"DocId",
		"Links.Backward",
		"Links.Forward",
		"Name.Language.Code",
		"Name.Language.Country",
		"Name.Url",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("leaf columns are %q, want %q", paths, want)
	}
}

func pathString(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}

func TestSchemaInvalidConfigurations(t *testing.T) {
	tests := []struct {
		scenario string
		root     parquets.Node
	}{
		{
			scenario: "empty group",
			root:     parquets.Group{},
		},
		{
			scenario: "fixed length byte array without length",
			root: parquets.Group{
				"id": parquets.Leaf(parquets.FixedLenByteArrayType(0)),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			_, err := parquets.NewSchema("test", test.root)
			if !errors.Is(err, parquets.ErrInvalidConfig) {
				t.Errorf("error is %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSchemaOptionalRepeated(t *testing.T) {
	// A repeated field may already be absent; making it optional must not
	// change its level arithmetic.
	schema := parquets.MustSchema("test", parquets.Group{
		"values": parquets.Optional(parquets.Repeated(parquets.Leaf(parquets.Int32Type))),
	})

	col, _ := schema.Lookup("values")
	if !col.Repeated() {
		t.Error("optional repeated field is not repeated")
	}
	if d := col.MaxDefinitionLevel(); d != 1 {
		t.Errorf("max definition level is %d, want 1", d)
	}
	if r := col.MaxRepetitionLevel(); r != 1 {
		t.Errorf("max repetition level is %d, want 1", r)
	}
}

func TestSchemaCompressionInheritance(t *testing.T) {
	schema := parquets.MustSchema("test", parquets.Group{
		"plain": parquets.Leaf(parquets.Int64Type),
		"packed": parquets.Compressed(parquets.Group{
			"a": parquets.Leaf(parquets.Int64Type),
			"b": parquets.Leaf(parquets.Int64Type),
		}, parquets.Gzip),
	})

	if col, _ := schema.Lookup("plain"); col.Compression() != nil {
		t.Error("unwrapped column inherited a compression codec")
	}
	for _, path := range []string{"packed.a", "packed.b"} {
		if col, _ := schema.Lookup(path); col.Compression() != parquets.Gzip {
			t.Errorf("column %s did not inherit the group codec", path)
		}
	}
}
