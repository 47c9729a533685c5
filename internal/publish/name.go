package publish

import (
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"folio/internal/model"
)

const nameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultName returns "<slug-of-name>-<random suffix>", e.g. "meeting-notes-3k9x0a2b".
func DefaultName(v model.View) string {
	base := slug.Make(strings.TrimSpace(v.Name))
	if base == "" {
		base = "untitled"
	}
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	return base + "-" + gonanoid.MustGenerate(nameAlphabet, 8)
}

// ValidName reports whether name can be used as a publish name as-is.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && slug.IsSlug(name)
}
