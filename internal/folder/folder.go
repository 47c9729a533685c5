// Package folder holds the in-memory view tree of one workspace.
//
// A Folder is not safe for concurrent use; share it through a Handle and access it
// with Locked.Read / Locked.Write.
package folder

import (
	"slices"
	"sort"
	"strings"
	"time"

	"folio/internal/model"
)

type Folder struct {
	workspace model.Workspace
	uid       string

	views map[string]*model.View
	// children maps a parent id (the workspace id for top-level views) to its ordered child ids.
	children map[string][]string
	// sections maps section -> identity -> membership list.
	sections map[model.Section]map[string][]model.SectionItem

	currentView string

	now func() time.Time
}

func New(ws model.Workspace, uid string) *Folder {
	return &Folder{
		workspace: ws,
		uid:       strings.TrimSpace(uid),
		views:     map[string]*model.View{},
		children:  map[string][]string{},
		sections:  map[model.Section]map[string][]model.SectionItem{},
		now:       time.Now,
	}
}

// SetClock replaces the clock used for section timestamps.
func (f *Folder) SetClock(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

func (f *Folder) Workspace() model.Workspace { return f.workspace }

func (f *Folder) WorkspaceID() string { return f.workspace.ID }

func (f *Folder) UID() string { return f.uid }

func (f *Folder) Exists(id string) bool {
	_, ok := f.views[id]
	return ok
}

// IsParent reports whether id can hold children: the workspace itself or an existing view.
func (f *Folder) IsParent(id string) bool {
	return id == f.workspace.ID || f.Exists(id)
}

// Get returns a copy of the view with IsFavorite resolved for the folder's identity.
func (f *Folder) Get(id string) (model.View, bool) {
	v, ok := f.views[id]
	if !ok {
		return model.View{}, false
	}
	out := *v
	out.IsFavorite = f.InSection(model.SectionFavorite, id)
	return out, true
}

func (f *Folder) ChildIDs(parentID string) []string {
	return slices.Clone(f.children[parentID])
}

// Children returns the stored children of parentID in storage order, skipping dangling ids.
func (f *Folder) Children(parentID string) []model.View {
	ids := f.children[parentID]
	out := make([]model.View, 0, len(ids))
	for _, id := range ids {
		if v, ok := f.Get(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// AllViews returns every stored view: tree order from the workspace first, then
// views not reachable from it sorted by id.
func (f *Folder) AllViews() []model.View {
	out := make([]model.View, 0, len(f.views))
	seen := NewVisited()
	f.Walk(f.workspace.ID, func(id string, _ int) bool {
		if v, ok := f.Get(id); ok {
			out = append(out, v)
			seen.Visit(id)
		}
		return true
	})
	rest := make([]string, 0)
	for id := range f.views {
		if !seen.Seen(id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		v, _ := f.Get(id)
		out = append(out, v)
	}
	return out
}

func (f *Folder) ParentOf(id string) (string, bool) {
	v, ok := f.views[id]
	if !ok {
		return "", false
	}
	return v.ParentID, true
}

// Insert stores v under v.ParentID at index (appended when index is nil or out of range).
// An existing view with the same id is replaced and repositioned.
func (f *Folder) Insert(v model.View, index *int) {
	if old, ok := f.views[v.ID]; ok {
		f.children[old.ParentID] = remove(f.children[old.ParentID], v.ID)
	}
	v.IsFavorite = false
	stored := v
	f.views[v.ID] = &stored
	f.children[v.ParentID] = insertAt(f.children[v.ParentID], v.ID, index)
}

// InsertOrphan stores v without adding it to any child list.
func (f *Folder) InsertOrphan(v model.View) {
	v.IsFavorite = false
	stored := v
	f.views[v.ID] = &stored
}

// MoveChild reorders id within its parent's child list from storage index from to
// storage index to. It reports false when from does not hold id.
func (f *Folder) MoveChild(id string, from, to int) bool {
	v, ok := f.views[id]
	if !ok {
		return false
	}
	list := f.children[v.ParentID]
	if from < 0 || from >= len(list) || list[from] != id {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= len(list) {
		to = len(list) - 1
	}
	if from == to {
		return false
	}
	list = slices.Delete(slices.Clone(list), from, from+1)
	list = slices.Insert(list, to, id)
	f.children[v.ParentID] = list
	return true
}

// MoveNested reparents id under newParentID, directly after prevID when it is a child
// of the new parent, otherwise as the first child.
func (f *Folder) MoveNested(id, newParentID string, prevID *string) bool {
	v, ok := f.views[id]
	if !ok {
		return false
	}
	f.children[v.ParentID] = remove(f.children[v.ParentID], id)
	v.ParentID = newParentID

	list := f.children[newParentID]
	idx := 0
	if prevID != nil {
		if i := slices.Index(list, *prevID); i >= 0 {
			idx = i + 1
		}
	}
	f.children[newParentID] = insertAt(list, id, &idx)
	return true
}

// ApplyPatch overlays the present fields of p onto the stored view.
func (f *Folder) ApplyPatch(id string, p model.ViewPatch, editor string) (model.View, bool) {
	v, ok := f.views[id]
	if !ok {
		return model.View{}, false
	}
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Desc != nil {
		v.Desc = *p.Desc
	}
	if p.Layout != nil {
		v.Layout = *p.Layout
	}
	if p.RemoveIcon {
		v.Icon = nil
	} else if p.Icon != nil {
		icon := *p.Icon
		v.Icon = &icon
	}
	if p.Extra != nil {
		v.Extra = *p.Extra
	}
	if p.IsLocked != nil {
		v.IsLocked = model.BoolPtr(*p.IsLocked)
	}
	if p.IsFavorite != nil {
		if *p.IsFavorite {
			f.AddSection(model.SectionFavorite, []string{id})
		} else {
			f.RemoveSection(model.SectionFavorite, []string{id})
		}
	}
	v.LastEditedBy = editor
	v.LastEditedAt = f.now().UTC()
	out, _ := f.Get(id)
	return out, true
}

// Remove deletes the view node and detaches it from its parent. Children keep their
// parent id and become unreachable; callers that want a subtree removal walk it first.
func (f *Folder) Remove(id string) bool {
	v, ok := f.views[id]
	if !ok {
		return false
	}
	f.children[v.ParentID] = remove(f.children[v.ParentID], id)
	delete(f.views, id)
	if len(f.children[id]) == 0 {
		delete(f.children, id)
	}
	if f.currentView == id {
		f.currentView = ""
	}
	return true
}

func (f *Folder) CurrentView() string { return f.currentView }

func (f *Folder) SetCurrentView(id string) { f.currentView = id }

func insertAt(list []string, id string, index *int) []string {
	list = remove(list, id)
	if index == nil || *index < 0 || *index >= len(list) {
		return append(list, id)
	}
	return slices.Insert(list, *index, id)
}

func remove(list []string, id string) []string {
	i := slices.Index(list, id)
	if i < 0 {
		return list
	}
	return slices.Delete(slices.Clone(list), i, i+1)
}
