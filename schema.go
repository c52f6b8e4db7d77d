package parquets

import (
	"fmt"
	"strings"

	"github.com/dobesv/parquets/compress"
	"github.com/dobesv/parquets/format"
)

// Schema is a compiled schema tree: the user-supplied nodes annotated with
// the repetition and definition level maxima of every column, the flat list
// of leaf columns in schema order, and an index of leaves by dotted path.
//
// Schema values are immutable once constructed and safe to share across
// writers, readers and cursors.
type Schema struct {
	name    string
	root    *Column
	columns []*Column
	paths   map[string]*Column
}

// Column represents a node of a compiled schema tree.
//
// Methods of Column values are safe to call concurrently from multiple
// goroutines.
type Column struct {
	node     Node
	name     string
	path     []string
	children []*Column
	branch   []*Column // leaves only: the chain of columns below the root
	index    int       // leaf position in schema order, -1 for groups
	typ      Type      // leaves only
	codec    compress.Codec

	maxRepetitionLevel int32
	maxDefinitionLevel int32
}

// NewSchema compiles the node tree rooted at root into a schema named name.
//
// The returned error wraps ErrInvalidConfig when the tree cannot describe a
// parquet schema, for example when a fixed-length leaf has no type length
// or the root has no fields.
func NewSchema(name string, root Node) (*Schema, error) {
	if root.NumChildren() == 0 {
		return nil, fmt.Errorf("schema %q has no fields: %w", name, ErrInvalidConfig)
	}

	s := &Schema{name: name, paths: make(map[string]*Column)}

	rootColumn, err := s.compile(root, name, nil, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	s.root = rootColumn

	for _, leaf := range s.columns {
		branch := make([]*Column, 0, len(leaf.path))
		col := s.root
		for _, name := range leaf.path {
			col = col.Column(name)
			branch = append(branch, col)
		}
		leaf.branch = branch
	}

	return s, nil
}

// MustSchema is like NewSchema but panics when the node tree is invalid. It
// simplifies the declaration of schemas known to be valid at compile time.
func MustSchema(name string, root Node) *Schema {
	s, err := NewSchema(name, root)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) compile(node Node, name string, path []string, maxRep, maxDef int32, codec compress.Codec) (*Column, error) {
	if len(path) > 0 { // the root contributes no levels
		if node.Repeated() {
			maxRep++
			maxDef++
		} else if node.Optional() {
			maxDef++
		}
	}
	if c := node.Compression(); c != nil {
		codec = c
	}

	col := &Column{
		node:               node,
		name:               name,
		path:               path,
		index:              -1,
		maxRepetitionLevel: maxRep,
		maxDefinitionLevel: maxDef,
	}

	if node.NumChildren() == 0 {
		typ := node.Type()
		if typ.Kind() == FixedLenByteArray && typ.Length() <= 0 {
			return nil, fmt.Errorf("field %q of type FIXED_LEN_BYTE_ARRAY has no type length: %w", strings.Join(path, "."), ErrInvalidConfig)
		}
		col.typ = typ
		col.codec = codec
		col.index = len(s.columns)
		s.columns = append(s.columns, col)
		s.paths[strings.Join(path, ".")] = col
		return col, nil
	}

	for _, childName := range node.ChildNames() {
		childPath := make([]string, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = childName

		child, err := s.compile(node.ChildByName(childName), childName, childPath, maxRep, maxDef, codec)
		if err != nil {
			return nil, err
		}
		col.children = append(col.children, child)
	}

	return col, nil
}

// Name returns the name of the schema root.
func (s *Schema) Name() string { return s.name }

// Root returns the root column of the schema.
func (s *Schema) Root() *Column { return s.root }

// Columns returns the leaf columns of the schema in schema order.
//
// The method returns the same slice across multiple calls, the program must
// treat it as a read-only value.
func (s *Schema) Columns() []*Column { return s.columns }

// Lookup returns the leaf column at the given dotted path, and whether it
// exists.
func (s *Schema) Lookup(path string) (*Column, bool) {
	c, ok := s.paths[path]
	return c, ok
}

// String returns the parquet text representation of the schema.
func (s *Schema) String() string {
	b := new(strings.Builder)
	Print(b, s.name, s.root.node)
	return b.String()
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Node returns the schema node the column was compiled from.
func (c *Column) Node() Node { return c.node }

// Path returns the path of the column from the root of the schema, omitting
// the name of the root.
func (c *Column) Path() []string { return c.path }

// Leaf returns true if the column carries values rather than child columns.
func (c *Column) Leaf() bool { return c.index >= 0 }

// Index returns the position of a leaf column in the schema's column order,
// or -1 for groups.
func (c *Column) Index() int { return c.index }

// Type returns the type of a leaf column, nil for groups.
func (c *Column) Type() Type { return c.typ }

// Optional returns true if the column is optional.
func (c *Column) Optional() bool { return c.node.Optional() }

// Repeated returns true if the column may repeat.
func (c *Column) Repeated() bool { return c.node.Repeated() }

// Required returns true if the column is required.
func (c *Column) Required() bool { return c.node.Required() }

// MaxRepetitionLevel returns the maximum repetition level of values of the
// column.
func (c *Column) MaxRepetitionLevel() int32 { return c.maxRepetitionLevel }

// MaxDefinitionLevel returns the maximum definition level of values of the
// column.
func (c *Column) MaxDefinitionLevel() int32 { return c.maxDefinitionLevel }

// Compression returns the compression codec of a leaf column, nil when the
// column uses the writer default.
func (c *Column) Compression() compress.Codec { return c.codec }

// Columns returns the child columns.
//
// The method returns the same slice across multiple calls, the program must
// treat it as a read-only value.
func (c *Column) Columns() []*Column { return c.children }

// Column returns the child column with the given name, nil if none exists.
func (c *Column) Column(name string) *Column {
	for _, child := range c.children {
		if child.name == name {
			return child
		}
	}
	return nil
}

// String returns a human-readable representation of the column.
func (c *Column) String() string {
	if c.Leaf() {
		return fmt.Sprintf("%s{%s,%s}", c.name, c.typ, repetitionTypeOf(c.node))
	}
	return fmt.Sprintf("%s{%s}", c.name, repetitionTypeOf(c.node))
}

func (c *Column) pathString() string { return strings.Join(c.path, ".") }

func repetitionTypeOf(node Node) format.FieldRepetitionType {
	switch {
	case node.Optional():
		return format.Optional
	case node.Repeated():
		return format.Repeated
	default:
		return format.Required
	}
}

// elements serializes the schema as the flat sequence of elements laid out
// in depth-first order which parquet files carry in their footer.
func (s *Schema) elements() []format.SchemaElement {
	elements := make([]format.SchemaElement, 0, len(s.columns)+1)
	elements = append(elements, format.SchemaElement{
		Name:        s.name,
		NumChildren: int32(len(s.root.children)),
	})
	for _, child := range s.root.children {
		elements = appendElements(elements, child)
	}
	return elements
}

func appendElements(elements []format.SchemaElement, col *Column) []format.SchemaElement {
	repetition := repetitionTypeOf(col.node)
	el := format.SchemaElement{
		Name:           col.name,
		RepetitionType: &repetition,
	}

	if col.Leaf() {
		physical := col.typ.Kind().PhysicalType()
		el.Type = &physical
		el.ConvertedType = col.typ.ConvertedType()
		if physical == format.FixedLenByteArray {
			length := int32(col.typ.Length())
			el.TypeLength = &length
		}
	} else {
		el.NumChildren = int32(len(col.children))
	}

	elements = append(elements, el)
	for _, child := range col.children {
		elements = appendElements(elements, child)
	}
	return elements
}

// schemaFromElements rebuilds a schema from the flat element sequence of a
// file footer.
func schemaFromElements(elements []format.SchemaElement) (*Schema, error) {
	if len(elements) == 0 {
		return nil, ErrMissingRootColumn
	}

	root := Group{}
	consumed := 1
	for i := int32(0); i < elements[0].NumChildren; i++ {
		name, node, n, err := nodeFromElements(elements[consumed:])
		if err != nil {
			return nil, err
		}
		if _, exists := root[name]; exists {
			return nil, fmt.Errorf("duplicate field %q in schema: %w", name, ErrCorrupted)
		}
		root[name] = node
		consumed += n
	}
	if consumed != len(elements) {
		return nil, fmt.Errorf("schema has %d elements but %d were consumed: %w", len(elements), consumed, ErrCorrupted)
	}

	return NewSchema(elements[0].Name, root)
}

func nodeFromElements(elements []format.SchemaElement) (string, Node, int, error) {
	if len(elements) == 0 {
		return "", nil, 0, fmt.Errorf("schema element sequence ended before all children were seen: %w", ErrCorrupted)
	}

	el := &elements[0]
	consumed := 1

	var node Node
	if el.NumChildren == 0 {
		typ, err := typeFromElement(el)
		if err != nil {
			return "", nil, 0, err
		}
		node = Leaf(typ)
	} else {
		group := Group{}
		for i := int32(0); i < el.NumChildren; i++ {
			name, child, n, err := nodeFromElements(elements[consumed:])
			if err != nil {
				return "", nil, 0, err
			}
			if _, exists := group[name]; exists {
				return "", nil, 0, fmt.Errorf("duplicate field %q in schema: %w", name, ErrCorrupted)
			}
			group[name] = child
			consumed += n
		}
		node = group
	}

	if el.RepetitionType != nil {
		switch *el.RepetitionType {
		case format.Required:
		case format.Optional:
			node = Optional(node)
		case format.Repeated:
			node = Repeated(node)
		default:
			return "", nil, 0, fmt.Errorf("schema element %q has unknown repetition type %d: %w", el.Name, *el.RepetitionType, ErrCorrupted)
		}
	}

	return el.Name, node, consumed, nil
}
