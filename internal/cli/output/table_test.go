package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

type fakeTabler struct {
	Name string `json:"name"`
}

func (f fakeTabler) Table() Table {
	return Table{Headers: []string{"NAME"}, Rows: [][]string{{f.Name}}}
}

func TestTableFormatter_Format(t *testing.T) {
	table := &Table{Headers: []string{"NAME", "VALUE"}}
	table.AddRow("key1", "value1")
	table.AddRow("longer-key", "v")

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME        VALUE") {
		t.Errorf("header not aligned: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "key1        value1") {
		t.Errorf("row not aligned: %q", lines[1])
	}
}

func TestTableFormatter_FormatTabler(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, fakeTabler{Name: "site"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "NAME\nsite\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTableFormatter_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"a": 1`) {
		t.Errorf("expected JSON fallback, got %q", buf.String())
	}
}

func TestJSONFormatter_IgnoresTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, fakeTabler{Name: "site"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{\n  \"name\": \"site\"\n}" {
		t.Errorf("unexpected JSON %q", buf.String())
	}
}

func TestJSONFormatter_KeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	snippet := `<script src="https://cdn.example/widget.js" data-key="am_1"></script>`
	if err := NewFormatter(FormatJSON).Format(&buf, map[string]string{"embed": snippet}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), snippet) {
		t.Errorf("expected literal snippet, got %q", buf.String())
	}
}

func TestJSONFormatter_ReindentsRawJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, json.RawMessage(` {"a":[1,2]} `)); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "{\n  \"a\": [\n    1,\n    2\n  ]\n}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	if err := NewFormatter(FormatJSON).Format(&buf, json.RawMessage(`{`)); err == nil {
		t.Errorf("expected error for malformed raw JSON")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatTable, "table": FormatTable, " JSON ": FormatJSON}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestCellHelpers(t *testing.T) {
	if Time(time.Time{}) != "-" || OptionalTime(nil) != "-" {
		t.Error("expected dash for missing time")
	}
	if Bool(true) != "yes" || Bool(false) != "no" {
		t.Error("unexpected bool formatting")
	}
	if Or("  ", "n/a") != "n/a" || Or("x", "n/a") != "x" {
		t.Error("unexpected Or result")
	}
}
