package mutate

import (
	"errors"
	"slices"
	"testing"

	"folio/internal/errs"
	"folio/internal/model"
)

func TestTrashViewUnfavoritesSubtree(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")
	mustInsert(f, "a1", "a")
	mustInsert(f, "a2", "a")
	mustInsert(f, "a11", "a1")
	mustInsert(f, "b", "ws")
	f.AddSection(model.SectionFavorite, []string{"a", "a11", "b"})
	f.SetCurrentView("a2")

	res, err := TrashView(f, "a")
	if err != nil {
		t.Fatalf("TrashView error: %v", err)
	}
	if got, want := res.Unfavorited, []string{"a", "a11"}; !slices.Equal(got, want) {
		t.Fatalf("unfavorited = %v, want %v", got, want)
	}
	if !f.InSection(model.SectionFavorite, "b") {
		t.Fatalf("b should stay favorite")
	}
	if !res.ClearedCurrent || f.CurrentView() != "" {
		t.Fatalf("expected current view cleared")
	}

	if _, err := TrashView(f, "a"); !errors.Is(err, errs.ErrAlreadyInSection) {
		t.Fatalf("expected ErrAlreadyInSection, got %v", err)
	}
}

func TestTrashViewHiddenIsNotFound(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")
	mustInsert(f, "a1", "a")
	if _, err := TrashView(f, "a"); err != nil {
		t.Fatalf("TrashView error: %v", err)
	}
	if _, err := TrashView(f, "a1"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound under a trashed parent, got %v", err)
	}
	if f.InSection(model.SectionTrash, "a1") {
		t.Fatalf("hidden view must not be trashed")
	}
}

func TestTrashViewLocked(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")
	if _, err := UpdateView(f, "u1", "a", model.ViewPatch{IsLocked: model.BoolPtr(true)}); err != nil {
		t.Fatalf("lock error: %v", err)
	}
	if _, err := TrashView(f, "a"); !errors.Is(err, errs.ErrViewLocked) {
		t.Fatalf("expected ErrViewLocked, got %v", err)
	}
	if f.InSection(model.SectionTrash, "a") {
		t.Fatalf("locked view must not be trashed")
	}
}

func TestRestoreTrashIdempotent(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")

	if RestoreTrash(f, "a") {
		t.Fatalf("restore of active view should report false")
	}
	if _, err := TrashView(f, "a"); err != nil {
		t.Fatalf("TrashView error: %v", err)
	}
	if !RestoreTrash(f, "a") {
		t.Fatalf("expected restore to report true")
	}
	if RestoreTrash(f, "a") {
		t.Fatalf("second restore should be a no-op")
	}
}

func TestDeleteViewCascades(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")
	mustInsert(f, "a1", "a")
	mustInsert(f, "a11", "a1")
	f.AddSection(model.SectionFavorite, []string{"a11"})
	if _, err := TrashView(f, "a"); err != nil {
		t.Fatalf("TrashView error: %v", err)
	}

	res, err := DeleteView(f, "a")
	if err != nil {
		t.Fatalf("DeleteView error: %v", err)
	}
	if len(res.Removed) != 3 || res.Removed[0].ID != "a" {
		t.Fatalf("unexpected removed views: %+v", res.Removed)
	}
	for _, id := range []string{"a", "a1", "a11"} {
		if f.Exists(id) {
			t.Fatalf("expected %s removed", id)
		}
	}
	if len(f.SectionIDs(model.SectionTrash)) != 0 {
		t.Fatalf("expected trash membership removed")
	}
	if _, err := DeleteView(f, "a"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestRestoreAllTrashOnlyCallers(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "a", "ws")
	mustInsert(f, "b", "ws")
	if _, err := TrashView(f, "a"); err != nil {
		t.Fatalf("TrashView error: %v", err)
	}

	restored := RestoreAllTrash(f)
	if !slices.Equal(restored, []string{"a"}) {
		t.Fatalf("restored = %v", restored)
	}
	if len(DeleteAllTrash(f)) != 0 {
		t.Fatalf("expected nothing to delete")
	}
}
