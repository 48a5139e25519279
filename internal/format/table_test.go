package format

import (
	"bytes"
	"strings"
	"testing"
)

type fakeRows struct{}

func (fakeRows) TableHeader() []string { return []string{"ID", "NAME"} }
func (fakeRows) TableRows() [][]string {
	return [][]string{{"t1", "one"}, {"t2", "two"}}
}

func TestWriteTableUnwrapsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": fakeRows{}}, "table", false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "ID") || !strings.Contains(out, "t2") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestWriteTableRejectsPlainValue(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": 42}, "table", false); err == nil {
		t.Fatal("expected an error for a value with no table form")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, "yaml", false); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
