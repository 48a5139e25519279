package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Tabular is implemented by values that can render themselves as rows.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

// WriteTable renders a Tabular value in aligned columns for human reading.
// Envelopes are unwrapped: a map with a Tabular "data" value renders its data.
func WriteTable(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			v = d
		}
	}
	t, ok := v.(Tabular)
	if !ok {
		return fmt.Errorf("value of type %T has no table form", v)
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.TableHeader(), "\t")); err != nil {
		return err
	}
	for _, row := range t.TableRows() {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
