package parquets

import (
	"fmt"
	"io"
	"strings"
)

// Print writes the parquet text representation of the schema node to w.
func Print(w io.Writer, name string, node Node) error {
	return PrintIndent(w, name, node, "\t", "\n")
}

// PrintIndent is like Print with control over the indentation pattern and
// line separator.
func PrintIndent(w io.Writer, name string, node Node, pattern, newline string) error {
	pw := &printWriter{writer: w}
	pw.WriteString("message ")

	if name == "" {
		pw.WriteString("{")
	} else {
		pw.WriteString(name)
		pw.WriteString(" {")
	}

	for _, child := range node.ChildNames() {
		printNode(pw, child, node.ChildByName(child), pattern, newline, 1)
	}

	pw.WriteString(newline)
	pw.WriteString("}")
	return pw.err
}

func printNode(w io.StringWriter, name string, node Node, pattern, newline string, depth int) {
	w.WriteString(newline)
	w.WriteString(strings.Repeat(pattern, depth))

	switch {
	case node.Optional():
		w.WriteString("optional ")
	case node.Repeated():
		w.WriteString("repeated ")
	default:
		w.WriteString("required ")
	}

	if node.NumChildren() > 0 {
		w.WriteString("group ")
		w.WriteString(name)
		w.WriteString(" {")
		for _, child := range node.ChildNames() {
			printNode(w, child, node.ChildByName(child), pattern, newline, depth+1)
		}
		w.WriteString(newline)
		w.WriteString(strings.Repeat(pattern, depth))
		w.WriteString("}")
		return
	}

	typ := node.Type()
	switch typ.Kind() {
	case Boolean:
		w.WriteString("boolean ")
	case Int32:
		w.WriteString("int32 ")
	case Int64:
		w.WriteString("int64 ")
	case Int96:
		w.WriteString("int96 ")
	case Float:
		w.WriteString("float ")
	case Double:
		w.WriteString("double ")
	case ByteArray:
		w.WriteString("binary ")
	default:
		w.WriteString(fmt.Sprintf("fixed_len_byte_array(%d) ", typ.Length()))
	}

	w.WriteString(name)
	if converted := typ.ConvertedType(); converted != nil {
		w.WriteString(" (")
		w.WriteString(converted.String())
		w.WriteString(")")
	}
	w.WriteString(";")
}

type printWriter struct {
	writer io.Writer
	err    error
}

func (w *printWriter) WriteString(s string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := io.WriteString(w.writer, s)
	if err != nil {
		w.err = err
	}
	return n, err
}
