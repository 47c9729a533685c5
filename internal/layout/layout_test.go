package layout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/errs"
	"folio/internal/model"
)

func TestRegistryUnknownLayout(t *testing.T) {
	r := NewRegistry(map[model.ViewLayout]Handler{model.LayoutDocument: NewDocumentHandler(NewMemoryStore())})
	if _, err := r.Get(model.LayoutDocument); err != nil {
		t.Fatalf("Get(document) error: %v", err)
	}
	if _, err := r.Get(model.LayoutGrid); !errors.Is(err, errs.ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}
}

func TestDefaultRegistryCoversLayouts(t *testing.T) {
	r := NewDefaultRegistry(NewMemoryStore())
	for _, l := range []model.ViewLayout{model.LayoutDocument, model.LayoutGrid, model.LayoutBoard, model.LayoutCalendar, model.LayoutChat} {
		if _, err := r.Get(l); err != nil {
			t.Fatalf("Get(%s) error: %v", l, err)
		}
	}
}

func TestDocumentRenameUpdatesHeading(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h := NewDocumentHandler(store)
	v := model.View{ID: "d1", Name: "Notes"}
	if _, err := h.CreateDefaultView(ctx, v); err != nil {
		t.Fatalf("CreateDefaultView error: %v", err)
	}
	renamed := v
	renamed.Name = "Journal"
	if err := h.DidUpdateView(ctx, v, renamed); err != nil {
		t.Fatalf("DidUpdateView error: %v", err)
	}
	pc, err := h.GatherPublishContent(ctx, renamed)
	if err != nil {
		t.Fatalf("GatherPublishContent error: %v", err)
	}
	doc, ok := pc.(DocumentContent)
	if !ok {
		t.Fatalf("expected DocumentContent, got %T", pc)
	}
	if !strings.HasPrefix(string(doc.Data), "# Journal\n") {
		t.Fatalf("unexpected document: %q", doc.Data)
	}

	if err := h.DeleteView(ctx, "d1"); err != nil {
		t.Fatalf("DeleteView error: %v", err)
	}
	if _, err := h.GatherPublishContent(ctx, renamed); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDatabaseImportCSV(t *testing.T) {
	ctx := context.Background()
	h := NewDatabaseHandler(NewMemoryStore())
	path := filepath.Join(t.TempDir(), "tasks.csv")
	if err := os.WriteFile(path, []byte("Name,Status\nWrite,todo\nShip,done\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	v := model.View{ID: "g1", Layout: model.LayoutGrid}
	if _, err := h.ImportFromPath(ctx, v, path); err != nil {
		t.Fatalf("ImportFromPath error: %v", err)
	}
	pc, err := h.GatherPublishContent(ctx, v)
	if err != nil {
		t.Fatalf("GatherPublishContent error: %v", err)
	}
	db, ok := pc.(DatabaseContent)
	if !ok {
		t.Fatalf("expected DatabaseContent, got %T", pc)
	}
	if len(db.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(db.Rows))
	}
	if got := string(db.Rows["g1-r2"]); !strings.Contains(got, `"Status":"done"`) {
		t.Fatalf("unexpected row: %s", got)
	}
	if len(db.VisibleViewIDs) != 1 || db.VisibleViewIDs[0] != "g1" {
		t.Fatalf("unexpected view ids: %v", db.VisibleViewIDs)
	}
}

func TestDatabaseDuplicateRebindsViewID(t *testing.T) {
	ctx := context.Background()
	h := NewDatabaseHandler(NewMemoryStore())
	src := model.View{ID: "g1", Layout: model.LayoutBoard}
	if _, err := h.CreateDefaultView(ctx, src); err != nil {
		t.Fatalf("CreateDefaultView error: %v", err)
	}
	snap, err := h.DuplicateView(ctx, "g1")
	if err != nil {
		t.Fatalf("DuplicateView error: %v", err)
	}
	clone := model.View{ID: "g2", Layout: model.LayoutBoard}
	if _, err := h.CreateViewWithInitialData(ctx, clone, snap, nil); err != nil {
		t.Fatalf("CreateViewWithInitialData error: %v", err)
	}
	pc, err := h.GatherPublishContent(ctx, clone)
	if err != nil {
		t.Fatalf("GatherPublishContent error: %v", err)
	}
	if ids := pc.(DatabaseContent).VisibleViewIDs; len(ids) != 1 || ids[0] != "g2" {
		t.Fatalf("expected clone to own its view id, got %v", ids)
	}
}

func TestChatIsUnsupported(t *testing.T) {
	ctx := context.Background()
	h := NewChatHandler(NewMemoryStore())
	pc, err := h.GatherPublishContent(ctx, model.View{ID: "c1", Layout: model.LayoutChat})
	if err != nil {
		t.Fatalf("GatherPublishContent error: %v", err)
	}
	if _, ok := pc.(Unsupported); !ok {
		t.Fatalf("expected Unsupported, got %T", pc)
	}
	if _, err := h.ImportFromBytes(ctx, model.View{ID: "c1"}, []byte("x")); !errors.Is(err, errs.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
