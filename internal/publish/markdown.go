package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"folio/internal/layout"
)

// RenderMarkdown renders a payload as a standalone markdown page.
func RenderMarkdown(p Payload) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	v := p.Meta.Metadata.View
	writeLn("# " + titleOf(v))
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + v.ViewID)
	writeLn("- Publish name: " + p.Meta.PublishName)
	writeLn("- Layout: " + v.Layout.String())
	if v.Icon != nil && strings.TrimSpace(v.Icon.Value) != "" {
		writeLn("- Icon: " + strings.TrimSpace(v.Icon.Value))
	}
	if path := ancestorPath(p.Meta.Metadata.AncestorViews); path != "" {
		writeLn("- Path: " + path)
	}
	if strings.TrimSpace(v.CreatedBy) != "" {
		writeLn("- Created by: " + strings.TrimSpace(v.CreatedBy))
	}
	if !v.CreatedAt.IsZero() {
		writeLn("- Created: " + v.CreatedAt.UTC().Format(time.RFC3339))
	}
	if !v.LastEditedAt.IsZero() {
		writeLn("- Last edited: " + v.LastEditedAt.UTC().Format(time.RFC3339))
	}
	writeLn("")

	if len(p.Meta.Metadata.ChildViews) > 0 {
		writeLn("## Children")
		writeLn("")
		renderChildren(writeLn, p.Meta.Metadata.ChildViews, 0)
		writeLn("")
	}

	switch c := p.Content.(type) {
	case layout.DocumentContent:
		writeLn("## Content")
		writeLn("")
		writeLn(strings.TrimRight(documentBody(string(c.Data)), "\n"))
	case layout.DatabaseContent:
		writeLn("## Rows")
		writeLn("")
		renderRows(writeLn, c)
	}
	return buf.String()
}

func renderChildren(writeLn func(string), views []View, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range views {
		writeLn(fmt.Sprintf("%s- %s (%s)", indent, titleOf(c), c.Layout.String()))
		renderChildren(writeLn, c.ChildViews, depth+1)
	}
}

func renderRows(writeLn func(string), c layout.DatabaseContent) {
	if len(c.Rows) == 0 {
		writeLn("_No rows._")
		return
	}
	ids := make([]string, 0, len(c.Rows))
	for id := range c.Rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		line := "- " + id
		var cells map[string]string
		if err := json.Unmarshal(c.Rows[id], &cells); err == nil && len(cells) > 0 {
			keys := make([]string, 0, len(cells))
			for k := range cells {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, k+": "+cells[k])
			}
			line += " | " + strings.Join(parts, ", ")
		}
		writeLn(line)
	}
}

func titleOf(v View) string {
	name := strings.TrimSpace(v.Name)
	if name == "" {
		return "Untitled"
	}
	return name
}

func ancestorPath(chain []View) string {
	names := make([]string, 0, len(chain))
	for _, a := range chain {
		names = append(names, titleOf(a))
	}
	return strings.Join(names, " / ")
}

// documentBody drops the leading title heading stored with the document.
func documentBody(s string) string {
	if !strings.HasPrefix(s, "# ") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		return strings.TrimLeft(s[i+1:], "\n")
	}
	return ""
}
