package mutate

import (
	"errors"
	"slices"
	"testing"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

func TestMoveViewTranslatesDisplayIndex(t *testing.T) {
	f := newFolder("u1")
	for _, id := range []string{"T", "A", "B", "C"} {
		mustInsert(f, id, "ws")
	}
	f.AddSection(model.SectionTrash, []string{"T"})
	hidden := folder.HiddenIDs(f, "u1")

	res, err := MoveView(f, "A", 2, hidden)
	if err != nil {
		t.Fatalf("MoveView error: %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	if got, want := f.ChildIDs("ws"), []string{"T", "B", "C", "A"}; !slices.Equal(got, want) {
		t.Fatalf("storage order = %v, want %v", got, want)
	}
}

func TestMoveViewLockedLeavesOrder(t *testing.T) {
	f := newFolder("u1")
	for _, id := range []string{"A", "B", "C"} {
		mustInsert(f, id, "ws")
	}
	if _, err := UpdateView(f, "u1", "A", model.ViewPatch{IsLocked: model.BoolPtr(true)}); err != nil {
		t.Fatalf("lock error: %v", err)
	}
	before := f.ChildIDs("ws")

	if _, err := MoveView(f, "A", 2, nil); !errors.Is(err, errs.ErrViewLocked) {
		t.Fatalf("expected ErrViewLocked, got %v", err)
	}
	if got := f.ChildIDs("ws"); !slices.Equal(got, before) {
		t.Fatalf("order changed: %v -> %v", before, got)
	}
}

func TestMoveViewOutOfRangeIsNoop(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "A", "ws")
	mustInsert(f, "B", "ws")

	res, err := MoveView(f, "A", 5, nil)
	if err != nil {
		t.Fatalf("MoveView error: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected no change")
	}
}

func TestMoveNestedView(t *testing.T) {
	f := newFolder("u1")
	mustInsert(f, "space", "ws")
	mustInsert(f, "a", "space")
	mustInsert(f, "a1", "a")
	mustInsert(f, "other", "ws")

	if _, err := MoveNestedView(f, "a", "a1", nil, nil, nil); !errors.Is(err, errs.ErrSelfOperation) {
		t.Fatalf("expected self operation error for descendant target, got %v", err)
	}
	if _, err := MoveNestedView(f, "a", "a", nil, nil, nil); !errors.Is(err, errs.ErrSelfOperation) {
		t.Fatalf("expected self operation error for self target, got %v", err)
	}

	pub, priv := model.VisibilityPublic, model.VisibilityPrivate
	res, err := MoveNestedView(f, "a", "other", nil, &pub, &priv)
	if err != nil {
		t.Fatalf("MoveNestedView error: %v", err)
	}
	if res.OldParentID != "space" || res.NewParentID != "other" || !res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !f.InSection(model.SectionPrivate, "a") {
		t.Fatalf("expected private membership after section change")
	}
	if got := f.ChildIDs("a"); !slices.Equal(got, []string{"a1"}) {
		t.Fatalf("subtree should move along, got %v", got)
	}
}
