package folder

import (
	"errors"
	"slices"
	"testing"
	"time"

	"folio/internal/errs"
	"folio/internal/model"
)

func newTestFolder(uid string) *Folder {
	f := New(model.Workspace{ID: "ws", Name: "Workspace"}, uid)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.SetClock(func() time.Time { return fixed })
	return f
}

func add(f *Folder, id, parent string) {
	f.Insert(model.View{ID: id, ParentID: parent, Name: id}, nil)
}

func TestInsertAtIndexAndChildren(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "c", "ws")
	idx := 1
	f.Insert(model.View{ID: "b", ParentID: "ws", Name: "b"}, &idx)

	if got, want := f.ChildIDs("ws"), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	// Out of range index appends.
	far := 99
	f.Insert(model.View{ID: "d", ParentID: "ws"}, &far)
	if got := f.ChildIDs("ws"); got[len(got)-1] != "d" {
		t.Fatalf("expected d appended, got %v", got)
	}
}

func TestMoveNestedAfterPrev(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "p1", "ws")
	add(f, "p2", "ws")
	add(f, "x", "p1")
	add(f, "y", "p2")
	add(f, "z", "p2")

	prev := "y"
	if !f.MoveNested("x", "p2", &prev) {
		t.Fatalf("MoveNested returned false")
	}
	if got, want := f.ChildIDs("p2"), []string{"y", "x", "z"}; !slices.Equal(got, want) {
		t.Fatalf("p2 children = %v, want %v", got, want)
	}
	if len(f.ChildIDs("p1")) != 0 {
		t.Fatalf("expected p1 to be empty, got %v", f.ChildIDs("p1"))
	}
	if parent, _ := f.ParentOf("x"); parent != "p2" {
		t.Fatalf("parent = %q, want p2", parent)
	}

	// No prev: first child.
	f.MoveNested("z", "p2", nil)
	if got := f.ChildIDs("p2"); got[0] != "z" {
		t.Fatalf("expected z first, got %v", got)
	}
}

func TestAncestorIDsStopsOnCycle(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "b", "a")
	add(f, "c", "b")
	// Corrupt the tree: a -> c makes a cycle a -> b -> c -> a.
	f.views["a"].ParentID = "c"

	done := make(chan []string, 1)
	go func() { done <- f.AncestorIDs("c") }()
	select {
	case chain := <-done:
		if len(chain) != 3 {
			t.Fatalf("expected 3 ids in partial chain, got %v", chain)
		}
		if chain[len(chain)-1] != "c" {
			t.Fatalf("expected chain to end at c, got %v", chain)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ancestor walk did not terminate")
	}
}

func TestAncestorIDsRootFirst(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "b", "a")
	add(f, "c", "b")
	if got, want := f.AncestorIDs("c"), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Fatalf("ancestors = %v, want %v", got, want)
	}
}

func TestWalkTerminatesOnChildCycle(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "b", "a")
	f.children["b"] = append(f.children["b"], "a")

	got := f.Descendants("a")
	if want := []string{"b"}; !slices.Equal(got, want) {
		t.Fatalf("descendants = %v, want %v", got, want)
	}
}

func TestHiddenIDsMonotonicUnderTrash(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "a1", "a")
	add(f, "a2", "a1")
	add(f, "b", "ws")
	add(f, "b1", "b")

	other := FromSnapshot(f.Snapshot(), "u2")
	other.AddSection(model.SectionPrivate, []string{"b"})
	f = FromSnapshot(other.Snapshot(), "u1")

	before := HiddenIDs(f, "u1")
	if _, ok := before["b"]; !ok {
		t.Fatalf("expected other identity's private view to be hidden")
	}

	f.AddSection(model.SectionTrash, []string{"a1"})
	after := HiddenIDs(f, "u1")
	for id := range before {
		if _, ok := after[id]; !ok {
			t.Fatalf("id %s left the hidden set after trashing", id)
		}
	}
	for _, id := range []string{"a1", "a2"} {
		if _, ok := after[id]; !ok {
			t.Fatalf("expected %s hidden after trash", id)
		}
	}
	if _, ok := after["a"]; ok {
		t.Fatalf("did not expect parent a to be hidden")
	}

	// The owner sees their own private view.
	if _, ok := HiddenIDs(f, "u2")["b"]; ok {
		t.Fatalf("owner should see private view b")
	}
}

func TestApplyPatchOnlyPresentFields(t *testing.T) {
	f := newTestFolder("u1")
	f.Insert(model.View{ID: "a", ParentID: "ws", Name: "Old", Desc: "keep"}, nil)

	v, ok := f.ApplyPatch("a", model.ViewPatch{Name: model.StrPtr("New"), IsFavorite: model.BoolPtr(true)}, "u1")
	if !ok {
		t.Fatalf("ApplyPatch returned false")
	}
	if v.Name != "New" || v.Desc != "keep" {
		t.Fatalf("unexpected view after patch: %+v", v)
	}
	if !v.IsFavorite {
		t.Fatalf("expected favorite after patch")
	}
	if v.LastEditedBy != "u1" {
		t.Fatalf("LastEditedBy = %q", v.LastEditedBy)
	}
}

func TestEncodeDecodeKeepsOrderAndSections(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "b", "ws")
	add(f, "a", "ws")
	add(f, "c", "a")
	f.AddSection(model.SectionFavorite, []string{"c"})
	f.SetCurrentView("c")

	b, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	g, err := Decode(b, "u1")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got, want := g.ChildIDs("ws"), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	v, ok := g.Get("c")
	if !ok || !v.IsFavorite {
		t.Fatalf("expected c favorite after decode, got %+v", v)
	}
	if g.CurrentView() != "c" {
		t.Fatalf("current view = %q", g.CurrentView())
	}
}

func TestDiff(t *testing.T) {
	f := newTestFolder("u1")
	add(f, "a", "ws")
	add(f, "b", "ws")
	prev := f.Snapshot()

	f.ApplyPatch("a", model.ViewPatch{Name: model.StrPtr("renamed")}, "u1")
	add(f, "c", "b")
	f.Remove("ws-missing")
	cur := f.Snapshot()

	cs := Diff(prev, cur)
	if !slices.Equal(cs.Added, []string{"c"}) {
		t.Fatalf("added = %v", cs.Added)
	}
	if !slices.Equal(cs.Updated, []string{"a", "b"}) {
		t.Fatalf("updated = %v", cs.Updated)
	}
	if len(cs.Removed) != 0 || cs.Sections {
		t.Fatalf("unexpected change set: %+v", cs)
	}
	if !Diff(cur, cur).Empty() {
		t.Fatalf("expected empty diff for identical snapshots")
	}
}

func TestHandleSwap(t *testing.T) {
	var h Handle
	if _, err := h.Load(); !errors.Is(err, errs.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	first := h.Store(newTestFolder("u1"))
	held, err := h.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if held != first {
		t.Fatalf("expected loaded handle to be the stored one")
	}

	h.Store(New(model.Workspace{ID: "ws2"}, "u1"))
	// The previously loaded value keeps working against its own folder.
	_ = held.Write(func(f *Folder) error {
		add(f, "a", "ws")
		return nil
	})
	_ = held.Read(func(f *Folder) error {
		if !f.Exists("a") || f.WorkspaceID() != "ws" {
			t.Fatalf("expected old folder to keep its state")
		}
		return nil
	})

	cur, _ := h.Load()
	_ = cur.Read(func(f *Folder) error {
		if f.WorkspaceID() != "ws2" || f.Exists("a") {
			t.Fatalf("expected swapped folder")
		}
		return nil
	})

	h.Clear()
	if _, err := h.Load(); !errors.Is(err, errs.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized after Clear, got %v", err)
	}
}
