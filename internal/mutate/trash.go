package mutate

import (
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

type TrashResult struct {
	View model.View
	// Unfavorited lists the view and descendants that were favorites before trashing.
	Unfavorited []string
	// ClearedCurrent is set when the current view was inside the trashed subtree.
	ClearedCurrent bool
}

// TrashView soft-deletes id for the folder's identity. The already-trashed, visibility
// and lock checks run before anything changes.
func TrashView(f *folder.Folder, id string) (TrashResult, error) {
	id = strings.TrimSpace(id)
	if f == nil || id == "" {
		return TrashResult{}, nil
	}
	v, ok := f.Get(id)
	if !ok {
		return TrashResult{}, errs.NotFound("view", id)
	}
	if f.InSection(model.SectionTrash, id) {
		return TrashResult{}, errs.AlreadyInSection(string(model.SectionTrash), id)
	}
	if _, hidden := folder.HiddenIDs(f, f.UID())[id]; hidden {
		return TrashResult{}, errs.NotFound("view", id)
	}
	if v.Locked() {
		return TrashResult{}, errs.Locked(id)
	}

	subtree := append([]string{id}, f.Descendants(id)...)
	favorited := make([]string, 0)
	for _, x := range subtree {
		if f.InSection(model.SectionFavorite, x) {
			favorited = append(favorited, x)
		}
	}
	f.RemoveSection(model.SectionFavorite, favorited)
	f.AddSection(model.SectionTrash, []string{id})

	res := TrashResult{Unfavorited: favorited}
	if cur := f.CurrentView(); cur != "" {
		for _, x := range subtree {
			if x == cur {
				f.SetCurrentView("")
				res.ClearedCurrent = true
				break
			}
		}
	}
	res.View, _ = f.Get(id)
	return res, nil
}

// RestoreTrash removes id from the folder identity's trash. It reports whether id was trashed.
func RestoreTrash(f *folder.Folder, id string) bool {
	if f == nil {
		return false
	}
	return len(f.RemoveSection(model.SectionTrash, []string{strings.TrimSpace(id)})) > 0
}

func RestoreAllTrash(f *folder.Folder) []string {
	if f == nil {
		return nil
	}
	return f.ClearSection(model.SectionTrash)
}

type DeleteResult struct {
	// Removed holds the deleted view first, then its descendants in preorder.
	Removed  []model.View
	ParentID string
}

// DeleteView permanently removes id and its whole subtree, together with every section
// membership of the removed ids.
func DeleteView(f *folder.Folder, id string) (DeleteResult, error) {
	id = strings.TrimSpace(id)
	if f == nil || id == "" {
		return DeleteResult{}, nil
	}
	root, ok := f.Get(id)
	if !ok {
		return DeleteResult{}, errs.NotFound("view", id)
	}
	res := DeleteResult{ParentID: root.ParentID}
	ids := append([]string{id}, f.Descendants(id)...)
	for _, x := range ids {
		v, ok := f.Get(x)
		if !ok {
			continue
		}
		res.Removed = append(res.Removed, v)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		f.Remove(ids[i])
		f.RemoveFromAllSections(ids[i])
	}
	return res, nil
}

// DeleteAllTrash permanently deletes every view in the folder identity's trash.
func DeleteAllTrash(f *folder.Folder) []DeleteResult {
	if f == nil {
		return nil
	}
	out := make([]DeleteResult, 0)
	for _, id := range f.SectionIDs(model.SectionTrash) {
		if !f.Exists(id) {
			f.RemoveFromAllSections(id)
			continue
		}
		res, err := DeleteView(f, id)
		if err != nil {
			continue
		}
		out = append(out, res)
	}
	return out
}
