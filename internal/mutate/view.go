package mutate

import (
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

type InsertResult struct {
	View     model.View
	ParentID string
}

// InsertView places v under v.ParentID (the workspace id for top-level views) at index,
// or appended when index is nil. An id already in the tree is rejected. Callers own id
// allocation and content creation.
func InsertView(f *folder.Folder, v model.View, index *int, private bool) (InsertResult, error) {
	v.ID = strings.TrimSpace(v.ID)
	v.ParentID = strings.TrimSpace(v.ParentID)
	if f == nil || v.ID == "" {
		return InsertResult{}, errs.New(errs.CodeInvalidID, "missing view id")
	}
	if v.ParentID == "" {
		v.ParentID = f.WorkspaceID()
	}
	if f.IsParent(v.ID) {
		return InsertResult{}, errs.New(errs.CodeInvalidID, "view already exists: %s", v.ID)
	}
	if !f.IsParent(v.ParentID) {
		return InsertResult{}, errs.NotFound("parent view", v.ParentID)
	}
	if v.ParentID == v.ID {
		return InsertResult{}, errs.SelfOperation("a view cannot be its own parent")
	}
	f.Insert(v, index)
	if private {
		f.AddSection(model.SectionPrivate, []string{v.ID})
	}
	out, _ := f.Get(v.ID)
	return InsertResult{View: out, ParentID: v.ParentID}, nil
}

// InsertOrphanView stores v with itself as parent and no child-list entry, so no
// listing reaches it until it is moved under a real parent.
func InsertOrphanView(f *folder.Folder, v model.View) (InsertResult, error) {
	v.ID = strings.TrimSpace(v.ID)
	if f == nil || v.ID == "" {
		return InsertResult{}, errs.New(errs.CodeInvalidID, "missing view id")
	}
	if f.IsParent(v.ID) {
		return InsertResult{}, errs.New(errs.CodeInvalidID, "view already exists: %s", v.ID)
	}
	v.ParentID = v.ID
	f.InsertOrphan(v)
	out, _ := f.Get(v.ID)
	return InsertResult{View: out, ParentID: v.ID}, nil
}

type UpdateResult struct {
	Old     model.View
	View    model.View
	Changed bool
}

// UpdateView applies patch to id. A locked view only accepts patches that change the lock.
func UpdateView(f *folder.Folder, editor, id string, patch model.ViewPatch) (UpdateResult, error) {
	id = strings.TrimSpace(id)
	if f == nil || id == "" {
		return UpdateResult{}, nil
	}
	old, ok := f.Get(id)
	if !ok {
		return UpdateResult{}, errs.NotFound("view", id)
	}
	if old.Locked() && patch.IsLocked == nil {
		return UpdateResult{}, errs.Locked(id)
	}
	if patch.IsEmpty() {
		return UpdateResult{Old: old, View: old, Changed: false}, nil
	}
	v, _ := f.ApplyPatch(id, patch, editor)
	return UpdateResult{Old: old, View: v, Changed: true}, nil
}
