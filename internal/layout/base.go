package layout

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// contentBase holds the behaviour shared by the built-in handlers.
type contentBase struct {
	store ContentStore

	mu   sync.Mutex
	open map[string]struct{}
}

func newContentBase(store ContentStore) *contentBase {
	return &contentBase{store: store, open: map[string]struct{}{}}
}

func (b *contentBase) put(ctx context.Context, viewID string, data []byte) ([]byte, error) {
	if err := b.store.PutContent(ctx, viewID, data); err != nil {
		return nil, fmt.Errorf("store content %s: %w", viewID, err)
	}
	b.mu.Lock()
	b.open[viewID] = struct{}{}
	b.mu.Unlock()
	return data, nil
}

func (b *contentBase) get(ctx context.Context, viewID string) ([]byte, error) {
	data, err := b.store.GetContent(ctx, viewID)
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", viewID, err)
	}
	return data, nil
}

func (b *contentBase) DuplicateView(ctx context.Context, viewID string) ([]byte, error) {
	return b.get(ctx, viewID)
}

func (b *contentBase) CloseView(_ context.Context, viewID string) error {
	b.mu.Lock()
	delete(b.open, viewID)
	b.mu.Unlock()
	return nil
}

func (b *contentBase) DeleteView(ctx context.Context, viewID string) error {
	_ = b.CloseView(ctx, viewID)
	if err := b.store.DeleteContent(ctx, viewID); err != nil {
		return fmt.Errorf("delete content %s: %w", viewID, err)
	}
	return nil
}

// IsOpen reports whether content for viewID was created or loaded and not closed since.
func (b *contentBase) IsOpen(viewID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.open[viewID]
	return ok
}

func readImportFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}
