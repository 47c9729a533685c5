package manager

import (
	"context"
	"errors"
	"slices"
	"testing"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
	"folio/internal/notify"
)

func TestTrashUnfavoritesSubtreeOnce(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	b := fx.doc(t, a.ID, "B")
	c := fx.doc(t, b.ID, "C")
	other := fx.doc(t, "", "Other")
	if _, err := fx.m.ToggleFavorite(ctx, []string{a.ID, c.ID, other.ID}); err != nil {
		t.Fatalf("ToggleFavorite error: %v", err)
	}
	events := fx.record(t)

	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	got := events()
	unfav := eventsOf(got, notify.KindUnfavorite)
	if len(unfav) != 1 {
		t.Fatalf("expected one unfavorite event, got %d", len(unfav))
	}
	if !slices.Equal(unfav[0].ViewIDs, []string{a.ID, c.ID}) {
		t.Fatalf("unexpected unfavorited ids: %v", unfav[0].ViewIDs)
	}
	if len(eventsOf(got, notify.KindMovedToTrash)) != 1 || len(eventsOf(got, notify.KindChildViewsChanged)) != 1 {
		t.Fatalf("expected moved-to-trash and child-views events, got %+v", got)
	}

	favs, _ := fx.m.Favorites(ctx)
	if n := names(favs); !slices.Equal(n, []string{"Other"}) {
		t.Fatalf("unexpected favorites: %v", n)
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		if _, err := fx.m.GetView(ctx, id); !errors.Is(err, errs.ErrRecordNotFound) {
			t.Fatalf("expected %s hidden, got %v", id, err)
		}
	}
	if err := fx.m.MoveViewToTrash(ctx, a.ID); !errors.Is(err, errs.ErrAlreadyInSection) {
		t.Fatalf("expected ErrAlreadyInSection, got %v", err)
	}
}

func TestTrashLockedView(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	if _, err := fx.m.LockView(ctx, a.ID); err != nil {
		t.Fatalf("LockView error: %v", err)
	}
	if err := fx.m.MoveViewToTrash(ctx, a.ID); !errors.Is(err, errs.ErrViewLocked) {
		t.Fatalf("expected ErrViewLocked, got %v", err)
	}
	info, _ := fx.m.TrashInfo(ctx)
	if len(info) != 0 {
		t.Fatalf("locked view reached trash: %+v", info)
	}
}

func TestTrashClearsCurrentView(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	b := fx.doc(t, a.ID, "B")
	if err := fx.m.SetCurrentView(ctx, b.ID); err != nil {
		t.Fatalf("SetCurrentView error: %v", err)
	}
	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	if _, err := fx.m.CurrentView(ctx); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected no current view, got %v", err)
	}
}

func TestRestoreTrashIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	events := fx.record(t)

	ok, err := fx.m.RestoreTrash(ctx, a.ID)
	if err != nil || ok {
		t.Fatalf("expected no-op restore, got %v %v", ok, err)
	}
	if got := events(); len(got) != 0 {
		t.Fatalf("expected no events for no-op restore, got %+v", got)
	}

	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	if ok, err := fx.m.RestoreTrash(ctx, a.ID); err != nil || !ok {
		t.Fatalf("expected restore, got %v %v", ok, err)
	}
	if ok, err := fx.m.RestoreTrash(ctx, a.ID); err != nil || ok {
		t.Fatalf("expected second restore to be a no-op, got %v %v", ok, err)
	}
	if _, err := fx.m.GetView(ctx, a.ID); err != nil {
		t.Fatalf("GetView after restore error: %v", err)
	}
}

func TestRestoreAllTrash(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	b := fx.doc(t, "", "B")
	for _, id := range []string{a.ID, b.ID} {
		if err := fx.m.MoveViewToTrash(ctx, id); err != nil {
			t.Fatalf("MoveViewToTrash error: %v", err)
		}
	}
	info, _ := fx.m.TrashInfo(ctx)
	if len(info) != 2 || info[0].Name != "A" {
		t.Fatalf("unexpected trash info: %+v", info)
	}
	ids, err := fx.m.RestoreAllTrash(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("RestoreAllTrash = %v, %v", ids, err)
	}
	all, _ := fx.m.AllViews(ctx)
	if len(all) != 2 {
		t.Fatalf("expected both views back, got %v", names(all))
	}
}

func TestDeleteTrashCascades(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	b := fx.doc(t, a.ID, "B")
	keep := fx.doc(t, "", "Keep")
	if _, err := fx.m.ToggleFavorite(ctx, []string{b.ID}); err != nil {
		t.Fatalf("ToggleFavorite error: %v", err)
	}

	if err := fx.m.DeleteTrash(ctx, a.ID); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound deleting an untrashed view, got %v", err)
	}
	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	if err := fx.m.DeleteTrash(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTrash error: %v", err)
	}

	err := fx.m.read(func(f *folder.Folder) error {
		if f.Exists(a.ID) || f.Exists(b.ID) {
			t.Fatalf("expected subtree removed")
		}
		for _, s := range []model.Section{model.SectionTrash, model.SectionFavorite} {
			if ids := f.AllSectionIDs(s); len(ids) != 0 {
				t.Fatalf("expected no %s memberships, got %v", s, ids)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if fx.content.Len() != 1 {
		t.Fatalf("expected only %s content left, got %d entries", keep.ID, fx.content.Len())
	}
}

func TestDeleteAllTrash(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	fx.doc(t, a.ID, "A1")
	b := fx.doc(t, "", "B")
	for _, id := range []string{a.ID, b.ID} {
		if err := fx.m.MoveViewToTrash(ctx, id); err != nil {
			t.Fatalf("MoveViewToTrash error: %v", err)
		}
	}
	ids, err := fx.m.DeleteAllTrash(ctx)
	if err != nil {
		t.Fatalf("DeleteAllTrash error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 removed ids, got %v", ids)
	}
	if info, _ := fx.m.TrashInfo(ctx); len(info) != 0 {
		t.Fatalf("expected empty trash, got %+v", info)
	}
	if fx.content.Len() != 0 {
		t.Fatalf("expected all content released, got %d", fx.content.Len())
	}
}

func TestHiddenSetGrowsWithTrash(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a := fx.doc(t, "", "A")
	fx.doc(t, a.ID, "A1")
	b := fx.doc(t, "", "B")
	fx.doc(t, b.ID, "B1")

	hidden := func() map[string]struct{} {
		var out map[string]struct{}
		_ = fx.m.read(func(f *folder.Folder) error {
			out = folder.HiddenIDs(f, f.UID())
			return nil
		})
		return out
	}
	if err := fx.m.MoveViewToTrash(ctx, a.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	before := hidden()
	if err := fx.m.MoveViewToTrash(ctx, b.ID); err != nil {
		t.Fatalf("MoveViewToTrash error: %v", err)
	}
	after := hidden()
	for id := range before {
		if _, ok := after[id]; !ok {
			t.Fatalf("trashing removed %s from the hidden set", id)
		}
	}
	if len(after) != 4 {
		t.Fatalf("expected 4 hidden ids, got %d", len(after))
	}
}

func TestTrashOtherIdentityPrivateView(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	private := model.VisibilityPrivate
	mine, _, err := fx.m.CreateView(ctx, CreateViewParams{Name: "Mine", Section: &private}, true)
	if err != nil {
		t.Fatalf("CreateView error: %v", err)
	}
	if err := fx.m.Save(ctx); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	other := fx.manager(t, "u2")
	if err := other.MoveViewToTrash(ctx, mine.ID); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := other.Save(ctx); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	owner := fx.manager(t, "u1")
	if _, err := owner.GetView(ctx, mine.ID); err != nil {
		t.Fatalf("owner GetView error: %v", err)
	}
}
