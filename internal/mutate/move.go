package mutate

import (
	"slices"
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

type MoveResult struct {
	ParentID string
	From     int
	To       int
	Changed  bool
}

// MoveView reorders id among its siblings. toDisplay is a position in the listing the
// caller sees (hidden siblings removed); it is resolved to the id occupying that slot and
// then to storage positions. An out-of-range toDisplay is a no-op.
func MoveView(f *folder.Folder, id string, toDisplay int, hidden map[string]struct{}) (MoveResult, error) {
	id = strings.TrimSpace(id)
	if f == nil || id == "" {
		return MoveResult{}, nil
	}
	v, ok := f.Get(id)
	if !ok {
		return MoveResult{}, errs.NotFound("view", id)
	}
	if v.Locked() {
		return MoveResult{}, errs.Locked(id)
	}

	storage := f.ChildIDs(v.ParentID)
	display := folder.FilterIDs(storage, hidden)
	res := MoveResult{ParentID: v.ParentID}
	if toDisplay < 0 || toDisplay >= len(display) {
		return res, nil
	}
	target := display[toDisplay]
	res.From = slices.Index(storage, id)
	res.To = slices.Index(storage, target)
	if res.From < 0 || res.To < 0 {
		return res, nil
	}
	res.Changed = f.MoveChild(id, res.From, res.To)
	return res, nil
}

type NestedMoveResult struct {
	OldParentID string
	NewParentID string
	Changed     bool
}

// MoveNestedView reparents id under newParentID, after prevID (or first). When both
// sections are given and differ, the Private membership follows toSection.
func MoveNestedView(f *folder.Folder, id, newParentID string, prevID *string, fromSection, toSection *model.Visibility) (NestedMoveResult, error) {
	id = strings.TrimSpace(id)
	newParentID = strings.TrimSpace(newParentID)
	if f == nil || id == "" {
		return NestedMoveResult{}, nil
	}
	v, ok := f.Get(id)
	if !ok {
		return NestedMoveResult{}, errs.NotFound("view", id)
	}
	if v.Locked() {
		return NestedMoveResult{}, errs.Locked(id)
	}
	if newParentID == "" {
		newParentID = f.WorkspaceID()
	}
	if newParentID == id || f.IsDescendant(id, newParentID) {
		return NestedMoveResult{}, errs.SelfOperation("cannot move a view into itself or its descendants")
	}
	if !f.IsParent(newParentID) {
		return NestedMoveResult{}, errs.NotFound("parent view", newParentID)
	}

	res := NestedMoveResult{OldParentID: v.ParentID, NewParentID: newParentID}
	res.Changed = f.MoveNested(id, newParentID, prevID)

	if fromSection != nil && toSection != nil && *fromSection != *toSection {
		if *toSection == model.VisibilityPrivate {
			f.AddSection(model.SectionPrivate, []string{id})
		} else {
			f.RemoveSection(model.SectionPrivate, []string{id})
		}
	}
	return res, nil
}
