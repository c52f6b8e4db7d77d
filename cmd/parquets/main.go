// Command parquets inspects parquet files: it prints their schema, their
// metadata, or the first rows of their content.
//
// Usage:
//
//	parquets schema <file>
//	parquets meta <file>
//	parquets head [-n rows] <file>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/dobesv/parquets"
	"github.com/olekukonko/tablewriter"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd := args[0]; cmd {
	case "schema":
		err = schemaCommand(args[1])
	case "meta":
		err = metaCommand(args[1])
	case "head":
		err = headCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "parquets: %s\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
	parquets schema <file>
	parquets meta <file>
	parquets head [-n rows] <file>`)
}

func openFile(path string) (*parquets.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	pf, err := parquets.OpenFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return pf, func() { pf.Close() }, nil
}

func schemaCommand(path string) error {
	pf, done, err := openFile(path)
	if err != nil {
		return err
	}
	defer done()

	fmt.Println(pf.Schema())
	return nil
}

func metaCommand(path string) error {
	pf, done, err := openFile(path)
	if err != nil {
		return err
	}
	defer done()

	fmt.Printf("file: %s\n", path)
	fmt.Printf("created by: %s\n", pf.CreatedBy())
	fmt.Printf("rows: %d in %d row group(s)\n", pf.NumRows(), pf.NumRowGroups())
	for _, kv := range pf.Metadata() {
		fmt.Printf("%s = %s\n", kv.Key, kv.Value)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"column", "type", "max def", "max rep"})
	for _, col := range pf.Schema().Columns() {
		table.Append([]string{
			joinPath(col.Path()),
			col.Type().String(),
			strconv.Itoa(int(col.MaxDefinitionLevel())),
			strconv.Itoa(int(col.MaxRepetitionLevel())),
		})
	}
	table.Render()
	return nil
}

func headCommand(args []string) error {
	flags := flag.NewFlagSet("head", flag.ExitOnError)
	numRows := flags.Int("n", 10, "number of rows to print")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	pf, done, err := openFile(flags.Arg(0))
	if err != nil {
		return err
	}
	defer done()

	rows, err := pf.Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	columns := make([]string, 0, len(pf.Schema().Columns()))
	for _, col := range pf.Schema().Columns() {
		columns = append(columns, joinPath(col.Path()))
	}
	sort.Strings(columns)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(columns)

	for i := 0; i < *numRows; i++ {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		cells := make([]string, len(columns))
		for j, path := range columns {
			cells[j] = formatCell(lookupPath(row, path))
		}
		table.Append(cells)
	}

	table.Render()
	return nil
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}

func lookupPath(row parquets.Record, path string) interface{} {
	var v interface{} = row
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			group, ok := v.(map[string]interface{})
			if !ok {
				return v
			}
			v = group[path[start:i]]
			start = i + 1
		}
	}
	return v
}

func formatCell(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
