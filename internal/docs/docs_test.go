package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	topics := Topics()
	want := []string{"publish", "sections", "trash", "views"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %+v", topics)
	}
	for i, tp := range topics {
		if tp.Name != want[i] {
			t.Fatalf("topic %d = %q, want %q", i, tp.Name, want[i])
		}
		if tp.Title == "" || tp.Title == tp.Name {
			t.Fatalf("topic %q has no heading title", tp.Name)
		}
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Trash ")
	if !ok || !strings.Contains(body, "folio trash restore") {
		t.Fatalf("Get(trash) = %v, %q", ok, body)
	}
	if _, ok := Get("../docs"); ok {
		t.Fatalf("expected path-like topic to be rejected")
	}
	if _, ok := Get("nope"); ok {
		t.Fatalf("expected unknown topic to be missing")
	}
}
