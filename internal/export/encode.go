package export

import (
	"bytes"
	"encoding/json"
)

// indent is the indentation of pretty-printed artifacts.
const indent = "  "

// Marshal serializes v as indented JSON.
// Keys keep struct declaration order; map keys are sorted, so the output
// for equal values is byte-identical.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
