package parquets

import (
	"github.com/dobesv/parquets/compress"
	"github.com/dobesv/parquets/format"
)

// The Node interface is implemented by the nodes of schema trees: groups of
// named fields, and leaves carrying a primitive type.
type Node interface {
	// Returns the type of values at this node; panics when called on a
	// group.
	Type() Type

	// Returns true if the node may appear at most once.
	Optional() bool

	// Returns true if the node may appear any number of times.
	Repeated() bool

	// Returns true if the node appears exactly once.
	Required() bool

	// Returns the number of child nodes, zero for leaves.
	NumChildren() int

	// Returns the sorted names of the child nodes.
	ChildNames() []string

	// Returns the child node with the given name; panics when the name does
	// not exist.
	ChildByName(name string) Node

	// Returns the compression codec applied to the sub-tree, nil when the
	// node inherits the codec of its parent (or the writer default).
	Compression() compress.Codec
}

// Optional wraps the given node to make it optional.
//
// Repeated nodes are returned unchanged: a repeated field may already be
// absent, and its level arithmetic is that of a repeated node.
func Optional(node Node) Node {
	if node.Optional() || node.Repeated() {
		return node
	}
	return &optionalNode{node}
}

type optionalNode struct{ Node }

func (opt *optionalNode) Optional() bool { return true }
func (opt *optionalNode) Repeated() bool { return false }
func (opt *optionalNode) Required() bool { return false }

// Repeated wraps the given node to make it repeated.
func Repeated(node Node) Node {
	if node.Repeated() {
		return node
	}
	return &repeatedNode{node}
}

type repeatedNode struct{ Node }

func (rep *repeatedNode) Optional() bool { return false }
func (rep *repeatedNode) Repeated() bool { return true }
func (rep *repeatedNode) Required() bool { return false }

// Required wraps the given node to make it required.
func Required(node Node) Node {
	if node.Required() {
		return node
	}
	return &requiredNode{node}
}

type requiredNode struct{ Node }

func (req *requiredNode) Optional() bool { return false }
func (req *requiredNode) Repeated() bool { return false }
func (req *requiredNode) Required() bool { return true }

// Compressed wraps the given node to apply the compression codec to the
// column chunks of its sub-tree.
func Compressed(node Node, codec compress.Codec) Node {
	return &compressedNode{Node: node, codec: codec}
}

type compressedNode struct {
	Node
	codec compress.Codec
}

func (n *compressedNode) Compression() compress.Codec { return n.codec }

type leafNode struct{ typ Type }

// Leaf constructs a required leaf node of the given type.
func Leaf(typ Type) Node {
	return &leafNode{typ: typ}
}

func (n *leafNode) Type() Type           { return n.typ }
func (n *leafNode) Optional() bool       { return false }
func (n *leafNode) Repeated() bool       { return false }
func (n *leafNode) Required() bool       { return true }
func (n *leafNode) NumChildren() int     { return 0 }
func (n *leafNode) ChildNames() []string { return nil }
func (n *leafNode) ChildByName(string) Node {
	panic("cannot lookup child by name in leaf parquet node")
}
func (n *leafNode) Compression() compress.Codec { return nil }

// String constructs a leaf node of UTF8 encoded BYTE_ARRAY values.
func String() Node {
	return Leaf(&primitiveType{kind: ByteArray, converted: convertedTypeOf(format.UTF8)})
}

// JSON constructs a leaf node of JSON documents stored as BYTE_ARRAY.
func JSON() Node {
	return Leaf(&primitiveType{kind: ByteArray, converted: convertedTypeOf(format.Json)})
}

// BSON constructs a leaf node of BSON documents stored as BYTE_ARRAY.
func BSON() Node {
	return Leaf(&primitiveType{kind: ByteArray, converted: convertedTypeOf(format.Bson)})
}

// Date constructs a leaf node of INT32 values counting days since the unix
// epoch.
func Date() Node {
	return Leaf(&primitiveType{kind: Int32, converted: convertedTypeOf(format.Date)})
}

// TimestampMillis constructs a leaf node of INT64 values counting
// milliseconds since the unix epoch.
func TimestampMillis() Node {
	return Leaf(&primitiveType{kind: Int64, converted: convertedTypeOf(format.TimestampMillis)})
}

// TimestampMicros constructs a leaf node of INT64 values counting
// microseconds since the unix epoch.
func TimestampMicros() Node {
	return Leaf(&primitiveType{kind: Int64, converted: convertedTypeOf(format.TimestampMicros)})
}

// Interval constructs a leaf node of INTERVAL values stored as
// FIXED_LEN_BYTE_ARRAY of 12 bytes.
func Interval() Node {
	return Leaf(&primitiveType{
		kind:      FixedLenByteArray,
		length:    12,
		converted: convertedTypeOf(format.Interval),
	})
}

// UUID constructs a leaf node of UUID values stored as FIXED_LEN_BYTE_ARRAY
// of 16 bytes.
func UUID() Node {
	return Leaf(FixedLenByteArrayType(16))
}
