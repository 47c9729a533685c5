package layout

import (
	"bytes"
	"context"

	"folio/internal/errs"
	"folio/internal/model"
)

// ChatHandler keeps chat transcripts. Chats cannot be published or imported.
type ChatHandler struct {
	*contentBase
}

func NewChatHandler(store ContentStore) *ChatHandler {
	return &ChatHandler{contentBase: newContentBase(store)}
}

func (h *ChatHandler) Name() string { return "chat" }

func (h *ChatHandler) CreateDefaultView(ctx context.Context, v model.View) ([]byte, error) {
	return h.put(ctx, v.ID, []byte(`{"messages":[]}`))
}

func (h *ChatHandler) CreateViewWithInitialData(ctx context.Context, v model.View, data []byte, _ map[string]string) ([]byte, error) {
	if len(data) == 0 {
		return h.CreateDefaultView(ctx, v)
	}
	return h.put(ctx, v.ID, bytes.Clone(data))
}

func (h *ChatHandler) GatherPublishContent(context.Context, model.View) (PublishContent, error) {
	return Unsupported{}, nil
}

func (h *ChatHandler) ImportFromPath(context.Context, model.View, string) ([]byte, error) {
	return nil, errs.NotSupported("chat import is not supported")
}

func (h *ChatHandler) ImportFromBytes(context.Context, model.View, []byte) ([]byte, error) {
	return nil, errs.NotSupported("chat import is not supported")
}

func (h *ChatHandler) DidUpdateView(context.Context, model.View, model.View) error { return nil }
