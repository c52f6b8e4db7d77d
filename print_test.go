package parquets_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dobesv/parquets"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

func TestPrint(t *testing.T) {
	schema := dremelSchema(t)

	want := `message Document {
	required int64 DocId;
	optional group Links {
		repeated int64 Backward;
		repeated int64 Forward;
	}
	repeated group Name {
		repeated group Language {
			required binary Code (UTF8);
			optional binary Country (UTF8);
		}
		optional binary Url (UTF8);
	}
}`

	got := new(strings.Builder)
	if err := parquets.Print(got, "Document", schema.Root().Node()); err != nil {
		t.Fatal(err)
	}

	if got.String() != want {
		edits := myers.ComputeEdits(span.URIFromPath("want.txt"), want, got.String())
		diff := fmt.Sprint(gotextdiff.ToUnified("want.txt", "got.txt", want, edits))
		t.Errorf("\n%s", diff)
	}
}

func TestPrintLogicalTypes(t *testing.T) {
	schema := parquets.MustSchema("logical", parquets.Group{
		"born":  parquets.Date(),
		"span":  parquets.Interval(),
		"token": parquets.UUID(),
	})

	want := `message logical {
	required int32 born (DATE);
	required fixed_len_byte_array(12) span (INTERVAL);
	required fixed_len_byte_array(16) token;
}`

	got := new(strings.Builder)
	if err := parquets.Print(got, "logical", schema.Root().Node()); err != nil {
		t.Fatal(err)
	}
	if got.String() != want {
		t.Errorf("schema dump is:\n%s\nwant:\n%s", got, want)
	}
}
