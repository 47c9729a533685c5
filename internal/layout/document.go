package layout

import (
	"bytes"
	"context"
	"strings"

	"folio/internal/model"
)

// DocumentHandler stores documents as markdown. The first line is the title heading and
// follows renames of the view.
type DocumentHandler struct {
	*contentBase
}

func NewDocumentHandler(store ContentStore) *DocumentHandler {
	return &DocumentHandler{contentBase: newContentBase(store)}
}

func (h *DocumentHandler) Name() string { return "document" }

func (h *DocumentHandler) CreateDefaultView(ctx context.Context, v model.View) ([]byte, error) {
	return h.put(ctx, v.ID, []byte(heading(v.Name)))
}

func (h *DocumentHandler) CreateViewWithInitialData(ctx context.Context, v model.View, data []byte, _ map[string]string) ([]byte, error) {
	if len(data) == 0 {
		return h.CreateDefaultView(ctx, v)
	}
	return h.put(ctx, v.ID, bytes.Clone(data))
}

func (h *DocumentHandler) GatherPublishContent(ctx context.Context, v model.View) (PublishContent, error) {
	data, err := h.get(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	return DocumentContent{Data: data}, nil
}

func (h *DocumentHandler) ImportFromPath(ctx context.Context, v model.View, path string) ([]byte, error) {
	data, err := readImportFile(path)
	if err != nil {
		return nil, err
	}
	return h.ImportFromBytes(ctx, v, data)
}

func (h *DocumentHandler) ImportFromBytes(ctx context.Context, v model.View, data []byte) ([]byte, error) {
	return h.CreateViewWithInitialData(ctx, v, data, nil)
}

func (h *DocumentHandler) DidUpdateView(ctx context.Context, old, updated model.View) error {
	if old.Name == updated.Name {
		return nil
	}
	data, err := h.get(ctx, updated.ID)
	if err != nil {
		return err
	}
	prefix := heading(old.Name)
	if !strings.HasPrefix(string(data), prefix) {
		return nil
	}
	next := heading(updated.Name) + strings.TrimPrefix(string(data), prefix)
	_, err = h.put(ctx, updated.ID, []byte(next))
	return err
}

func heading(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	return "# " + name + "\n"
}
