package manager

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"folio/internal/cloud"
	"folio/internal/errs"
	"folio/internal/layout"
	"folio/internal/model"
	"folio/internal/notify"
)

func TestPublishView(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "Guide")
	fx.doc(t, a.ID, "Page")
	chat := fx.create(t, "", "Talk", model.LayoutChat)

	info, err := fx.m.PublishView(ctx, a.ID, "guide", nil)
	if err != nil {
		t.Fatalf("PublishView error: %v", err)
	}
	if info.PublishName != "guide" || info.Namespace != fx.ws.ID || info.PublishedBy != "u1" {
		t.Fatalf("unexpected publish info: %+v", info)
	}
	if _, err := fx.m.PublishView(ctx, chat.ID, "", nil); !errors.Is(err, errs.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported for chat, got %v", err)
	}

	// Republishing without a name keeps the current one.
	again, err := fx.m.PublishView(ctx, a.ID, "", nil)
	if err != nil {
		t.Fatalf("PublishView again error: %v", err)
	}
	if again.PublishName != "guide" {
		t.Fatalf("expected name kept, got %q", again.PublishName)
	}

	list, err := fx.m.ListPublished(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListPublished = %+v, %v", list, err)
	}
	if err := fx.m.SetPublishName(ctx, a.ID, "Bad Name"); !errors.Is(err, errs.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for bad name, got %v", err)
	}
	if err := fx.m.UnpublishViews(ctx, []string{a.ID}); err != nil {
		t.Fatalf("UnpublishViews error: %v", err)
	}
	if _, err := fx.m.PublishInfo(ctx, a.ID); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound after unpublish, got %v", err)
	}
}

func TestPublishDatabaseSelectedViews(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	grid := fx.create(t, "", "Tasks", model.LayoutGrid)
	board := fx.create(t, "", "Board", model.LayoutBoard)

	if _, err := fx.m.PublishView(ctx, grid.ID, "tasks", []string{grid.ID, board.ID}); err != nil {
		t.Fatalf("PublishView error: %v", err)
	}
	b, err := fx.backend.Get(ctx, fx.ws.ID+"/pages/"+fx.ws.ID+"/tasks.json")
	if err != nil {
		t.Fatalf("Get page error: %v", err)
	}
	var page struct {
		Kind string                 `json:"kind"`
		Data layout.DatabaseContent `json:"data"`
	}
	if err := json.Unmarshal(b, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Kind != "database" || !slices.Equal(page.Data.VisibleViewIDs, []string{grid.ID, board.ID}) {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestPublishViewsWithChildren(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	b := fx.doc(t, a.ID, "B")
	fx.create(t, a.ID, "Chat", model.LayoutChat)
	trashed := fx.doc(t, a.ID, "Gone")
	if err := fx.m.MoveViewToTrash(ctx, trashed.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}

	ids, err := fx.m.PublishViews(ctx, a.ID, "a-root", true)
	if err != nil {
		t.Fatalf("PublishViews error: %v", err)
	}
	if !slices.Equal(ids, []string{a.ID, b.ID}) {
		t.Fatalf("unexpected published ids: %v", ids)
	}
	if err := fx.m.SetDefaultPublishedView(ctx, a.ID); err != nil {
		t.Fatalf("SetDefaultPublishedView error: %v", err)
	}
	def, err := fx.m.DefaultPublishedView(ctx)
	if err != nil || def.ViewID != a.ID {
		t.Fatalf("DefaultPublishedView = %+v, %v", def, err)
	}
	if err := fx.m.RemoveDefaultPublishedView(ctx); err != nil {
		t.Fatalf("RemoveDefaultPublishedView error: %v", err)
	}
}

func TestPublishNamespaceAndSharing(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	events := fx.record(t)

	if err := fx.m.SetPublishNamespace(ctx, "team-docs"); err != nil {
		t.Fatalf("SetPublishNamespace error: %v", err)
	}
	ns, err := fx.m.PublishNamespace(ctx)
	if err != nil || ns != "team-docs" {
		t.Fatalf("PublishNamespace = %q, %v", ns, err)
	}

	if err := fx.m.SharePage(ctx, a.ID, []string{"kim@example.com"}, cloud.AccessReadOnly); err != nil {
		t.Fatalf("SharePage error: %v", err)
	}
	pages, err := fx.m.SharedPages(ctx)
	if err != nil || len(pages) != 1 || pages[0].ViewID != a.ID {
		t.Fatalf("SharedPages = %+v, %v", pages, err)
	}
	if err := fx.m.RevokePage(ctx, a.ID, []string{"kim@example.com"}); err != nil {
		t.Fatalf("RevokePage error: %v", err)
	}
	if n := len(eventsOf(events(), notify.KindSharedViewsChanged)); n != 2 {
		t.Fatalf("expected 2 shared-views events, got %d", n)
	}
}

func TestPublishWithoutCloud(t *testing.T) {
	m := New(Options{UID: "u1", Registry: layout.NewDefaultRegistry(layout.NewMemoryStore())})
	ctx := context.Background()
	if err := m.InitializeAfterOpenWorkspace(ctx, model.Workspace{ID: "ws"}); err != nil {
		t.Fatalf("InitializeAfterOpenWorkspace error: %v", err)
	}
	v, _, err := m.CreateView(ctx, CreateViewParams{Name: "A"}, true)
	if err != nil {
		t.Fatalf("CreateView error: %v", err)
	}
	if _, err := m.PublishView(ctx, v.ID, "", nil); !errors.Is(err, errs.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported without cloud, got %v", err)
	}
	payloads, err := m.PublishPayloads(ctx, v.ID, "", false)
	if err != nil || len(payloads) != 1 {
		t.Fatalf("PublishPayloads = %d, %v", len(payloads), err)
	}
}
