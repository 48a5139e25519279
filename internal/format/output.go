// Package format renders CLI command output, either as strict JSON for
// scripting or as aligned columns for reading in a terminal.
package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write renders v in the requested format ("json" or "table"; empty means
// json).
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON emits one JSON document followed by a newline. Output stays
// strict JSON; anything advisory belongs in a `meta` object, not in prose.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
