package parquets

import (
	"sort"

	"github.com/dobesv/parquets/compress"
)

// Group is a mapping of field names to child nodes, implementing the Node
// interface for the inner nodes of schema trees.
//
// Child names are exposed in sorted order, which also determines the order
// of leaf columns in the schema.
type Group map[string]Node

func (g Group) Type() Type { panic("cannot call Type on parquet group") }

func (g Group) Optional() bool { return false }

func (g Group) Repeated() bool { return false }

func (g Group) Required() bool { return true }

func (g Group) NumChildren() int { return len(g) }

func (g Group) ChildNames() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g Group) ChildByName(name string) Node {
	n, ok := g[name]
	if ok {
		return n
	}
	panic("column not found in parquet group: " + name)
}

func (g Group) Compression() compress.Codec { return nil }
