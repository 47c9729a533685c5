package layout

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"folio/internal/model"
)

type databaseDoc struct {
	Fields    []string          `json:"fields"`
	Rows      []databaseRow     `json:"rows"`
	ViewIDs   []string          `json:"viewIds"`
	Relations map[string]string `json:"relations,omitempty"`
}

type databaseRow struct {
	ID       string            `json:"id"`
	Cells    map[string]string `json:"cells"`
	Document string            `json:"document,omitempty"`
}

// DatabaseHandler serves grid, board and calendar views. Content is JSON; imports
// accept either that JSON or CSV with a header row.
type DatabaseHandler struct {
	*contentBase
}

func NewDatabaseHandler(store ContentStore) *DatabaseHandler {
	return &DatabaseHandler{contentBase: newContentBase(store)}
}

func (h *DatabaseHandler) Name() string { return "database" }

func (h *DatabaseHandler) CreateDefaultView(ctx context.Context, v model.View) ([]byte, error) {
	return h.save(ctx, v.ID, databaseDoc{Fields: []string{"Name"}, Rows: []databaseRow{}})
}

func (h *DatabaseHandler) CreateViewWithInitialData(ctx context.Context, v model.View, data []byte, _ map[string]string) ([]byte, error) {
	if len(data) == 0 {
		return h.CreateDefaultView(ctx, v)
	}
	doc, err := decodeDatabase(v.ID, data)
	if err != nil {
		return nil, err
	}
	return h.save(ctx, v.ID, doc)
}

func (h *DatabaseHandler) GatherPublishContent(ctx context.Context, v model.View) (PublishContent, error) {
	data, err := h.get(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	var doc databaseDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode database %s: %w", v.ID, err)
	}
	meta, err := json.Marshal(struct {
		Fields  []string `json:"fields"`
		ViewIDs []string `json:"viewIds"`
	}{doc.Fields, doc.ViewIDs})
	if err != nil {
		return nil, err
	}
	out := DatabaseContent{
		Database:       meta,
		Rows:           map[string][]byte{},
		RowDocuments:   map[string][]byte{},
		Relations:      map[string]string{},
		VisibleViewIDs: append([]string(nil), doc.ViewIDs...),
	}
	for _, r := range doc.Rows {
		b, err := json.Marshal(r.Cells)
		if err != nil {
			return nil, err
		}
		out.Rows[r.ID] = b
		if r.Document != "" {
			out.RowDocuments[r.ID] = []byte(r.Document)
		}
	}
	for k, v := range doc.Relations {
		out.Relations[k] = v
	}
	return out, nil
}

func (h *DatabaseHandler) ImportFromPath(ctx context.Context, v model.View, path string) ([]byte, error) {
	data, err := readImportFile(path)
	if err != nil {
		return nil, err
	}
	return h.ImportFromBytes(ctx, v, data)
}

func (h *DatabaseHandler) ImportFromBytes(ctx context.Context, v model.View, data []byte) ([]byte, error) {
	return h.CreateViewWithInitialData(ctx, v, data, nil)
}

func (h *DatabaseHandler) DidUpdateView(context.Context, model.View, model.View) error { return nil }

func (h *DatabaseHandler) save(ctx context.Context, viewID string, doc databaseDoc) ([]byte, error) {
	doc.ViewIDs = []string{viewID}
	if doc.Rows == nil {
		doc.Rows = []databaseRow{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return h.put(ctx, viewID, b)
}

func decodeDatabase(viewID string, data []byte) (databaseDoc, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc databaseDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return databaseDoc{}, fmt.Errorf("decode database: %w", err)
		}
		return doc, nil
	}

	records, err := csv.NewReader(bytes.NewReader(trimmed)).ReadAll()
	if err != nil {
		return databaseDoc{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return databaseDoc{Fields: []string{"Name"}}, nil
	}
	doc := databaseDoc{Fields: make([]string, 0, len(records[0]))}
	for _, f := range records[0] {
		doc.Fields = append(doc.Fields, strings.TrimSpace(f))
	}
	for i, rec := range records[1:] {
		row := databaseRow{ID: fmt.Sprintf("%s-r%d", viewID, i+1), Cells: map[string]string{}}
		for j, cell := range rec {
			if j < len(doc.Fields) {
				row.Cells[doc.Fields[j]] = cell
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}
