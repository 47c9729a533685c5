package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Envelope{Data: map[string]any{"id": "a"}}, "json", false); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"data":{"id":"a"}}` {
		t.Fatalf("unexpected json: %s", got)
	}
}

func TestWriteEDNKeywords(t *testing.T) {
	var buf bytes.Buffer
	v := Envelope{
		Data:  map[string]any{"parentId": "p", "count": 3, "ok": true, "icon": nil},
		Hints: []string{"folio views tree"},
	}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	want := `{:_hints ["folio views tree"] :data {:count 3 :icon nil :ok true :parent-id "p"}}`
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("edn mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestWriteEDNPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, []any{"a", []any{}}, true); err != nil {
		t.Fatalf("WriteEDN error: %v", err)
	}
	want := "[\n  \"a\"\n  []\n]\n"
	if buf.String() != want {
		t.Fatalf("pretty edn mismatch: %q", buf.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
