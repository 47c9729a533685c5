// Package layout dispatches content operations to the engine that owns a view layout.
package layout

import (
	"context"

	"folio/internal/errs"
	"folio/internal/model"
)

// Handler owns the content of views with one or more layouts. The tree never holds its
// lock while calling a Handler.
type Handler interface {
	Name() string

	// CreateDefaultView creates empty content and returns its encoded snapshot.
	CreateDefaultView(ctx context.Context, v model.View) ([]byte, error)
	// CreateViewWithInitialData stores data (and meta) as the initial content.
	CreateViewWithInitialData(ctx context.Context, v model.View, data []byte, meta map[string]string) ([]byte, error)
	// DuplicateView returns a content snapshot usable as initial data for a clone.
	DuplicateView(ctx context.Context, viewID string) ([]byte, error)
	GatherPublishContent(ctx context.Context, v model.View) (PublishContent, error)

	ImportFromPath(ctx context.Context, v model.View, path string) ([]byte, error)
	ImportFromBytes(ctx context.Context, v model.View, data []byte) ([]byte, error)

	CloseView(ctx context.Context, viewID string) error
	// DeleteView releases every resource held for viewID.
	DeleteView(ctx context.Context, viewID string) error
	DidUpdateView(ctx context.Context, old, updated model.View) error
}

// Registry maps layouts to handlers. It is built once and read-only afterwards.
type Registry struct {
	handlers map[model.ViewLayout]Handler
}

func NewRegistry(handlers map[model.ViewLayout]Handler) *Registry {
	cp := make(map[model.ViewLayout]Handler, len(handlers))
	for l, h := range handlers {
		if h != nil {
			cp[l] = h
		}
	}
	return &Registry{handlers: cp}
}

// NewDefaultRegistry wires the built-in handlers over one content store.
func NewDefaultRegistry(store ContentStore) *Registry {
	doc := NewDocumentHandler(store)
	db := NewDatabaseHandler(store)
	return NewRegistry(map[model.ViewLayout]Handler{
		model.LayoutDocument: doc,
		model.LayoutGrid:     db,
		model.LayoutBoard:    db,
		model.LayoutCalendar: db,
		model.LayoutChat:     NewChatHandler(store),
	})
}

func (r *Registry) Get(l model.ViewLayout) (Handler, error) {
	if r != nil {
		if h, ok := r.handlers[l]; ok {
			return h, nil
		}
	}
	return nil, errs.UnknownLayout(l)
}

// ContentStore persists encoded view content by view id.
type ContentStore interface {
	PutContent(ctx context.Context, viewID string, data []byte) error
	// GetContent returns an errs.ErrRecordNotFound error when viewID has no content.
	GetContent(ctx context.Context, viewID string) ([]byte, error)
	DeleteContent(ctx context.Context, viewID string) error
}
