package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"folio/internal/errs"
	"folio/internal/model"
)

func TestConsumeRecentWorkspaceChanges(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")

	cs, err := fx.m.ConsumeRecentWorkspaceChanges(ctx)
	if err != nil {
		t.Fatalf("ConsumeRecentWorkspaceChanges error: %v", err)
	}
	if !slices.Contains(cs.Added, a.ID) {
		t.Fatalf("expected %s added, got %+v", a.ID, cs)
	}
	cs, err = fx.m.ConsumeRecentWorkspaceChanges(ctx)
	if err != nil {
		t.Fatalf("ConsumeRecentWorkspaceChanges error: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("expected no changes, got %+v", cs)
	}

	if _, err := fx.m.UpdateView(ctx, a.ID, model.ViewPatch{Name: model.StrPtr("A2")}); err != nil {
		t.Fatalf("UpdateView error: %v", err)
	}
	b := fx.doc(t, "", "B")
	cs, err = fx.m.ConsumeRecentWorkspaceChanges(ctx)
	if err != nil {
		t.Fatalf("ConsumeRecentWorkspaceChanges error: %v", err)
	}
	if !slices.Contains(cs.Updated, a.ID) || !slices.Equal(cs.Added, []string{b.ID}) {
		t.Fatalf("unexpected change set: %+v", cs)
	}
}

func TestFolderSnapshotRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	info, err := fx.m.SnapshotToCloud(ctx)
	if err != nil {
		t.Fatalf("SnapshotToCloud error: %v", err)
	}
	fx.doc(t, "", "B")
	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}

	snaps, err := fx.m.FolderSnapshots(ctx, 5)
	if err != nil || len(snaps) != 1 || snaps[0].Key != info.Key {
		t.Fatalf("FolderSnapshots = %+v, %v", snaps, err)
	}
	if err := fx.m.RestoreFolderSnapshot(ctx, info.Key); err != nil {
		t.Fatalf("RestoreFolderSnapshot error: %v", err)
	}
	all, _ := fx.m.AllViews(ctx)
	if got := names(all); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("expected restored tree, got %v", got)
	}
	if err := fx.m.RestoreFolderSnapshot(ctx, "other/snapshots/1.bin"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for foreign key, got %v", err)
	}
}

func TestImport(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	parent := fx.doc(t, "", "Inbox")
	path := filepath.Join(t.TempDir(), "meeting.md")
	if err := os.WriteFile(path, []byte("# Meeting\n\nAgenda\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	views, err := fx.m.Import(ctx, []ImportParams{
		{ParentID: parent.ID, Path: path},
		{ParentID: parent.ID, Name: "Tasks", Layout: model.LayoutGrid, Data: []byte("Name,Done\nShip,yes\n")},
	})
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if got := names(views); !slices.Equal(got, []string{"meeting", "Tasks"}) {
		t.Fatalf("unexpected imported views: %v", got)
	}
	keys, err := fx.backend.List(ctx, fx.ws.ID+"/collab/")
	if err != nil || len(keys) != 2 {
		t.Fatalf("expected 2 synced objects, got %v (%v)", keys, err)
	}

	if _, _, err := fx.m.ImportFile(ctx, ImportParams{Name: "Talk", Layout: model.LayoutChat, Data: []byte("x")}); !errors.Is(err, errs.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported importing chat, got %v", err)
	}
	if got, _ := fx.m.AllViews(ctx); len(got) != 3 {
		t.Fatalf("failed import left a view behind: %v", names(got))
	}
}
