package output

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON with HTML characters left unescaped, so
// embed snippets can be pasted straight from the output.
type JSONFormatter struct{}

// Format encodes data as JSON. Tabler values are encoded as themselves,
// not as their table. Raw JSON is re-indented rather than re-encoded.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if raw, ok := data.(json.RawMessage); ok {
		return writeIndented(w, raw)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return writeIndented(w, buf.Bytes())
}

func writeIndented(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(raw), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
