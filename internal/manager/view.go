package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/layout"
	"folio/internal/model"
	"folio/internal/mutate"
	"folio/internal/notify"
	"folio/internal/store"
)

type CreateViewParams struct {
	// ParentID defaults to the workspace (a top-level view).
	ParentID string
	// ViewID must be a UUID when set; a fresh id is generated otherwise.
	ViewID string
	Name   string
	Desc   string
	Layout model.ViewLayout
	Icon   *model.ViewIcon
	Extra  string
	// Index is a storage position among the parent's children; nil appends.
	Index        *int
	InitialData  []byte
	Meta         map[string]string
	SetAsCurrent bool
	Section      *model.Visibility
}

// CreateView creates content through the layout's handler, then inserts the node. With
// notifyWorkspace the parent's child list change and a workspace update are emitted.
func (m *Manager) CreateView(ctx context.Context, p CreateViewParams, notifyWorkspace bool) (model.View, []byte, error) {
	h, err := m.handler(p.Layout)
	if err != nil {
		return model.View{}, nil, err
	}
	id, err := m.claimID(p.ViewID)
	if err != nil {
		return model.View{}, nil, err
	}
	defer m.creating.Delete(id)

	var v model.View
	err = m.read(func(f *folder.Folder) error {
		parentID := strings.TrimSpace(p.ParentID)
		if parentID == "" {
			parentID = f.WorkspaceID()
		}
		if !f.IsParent(parentID) {
			return errs.NotFound("parent view", parentID)
		}
		if f.IsParent(id) {
			return errs.New(errs.CodeInvalidID, "view already exists: %s", id)
		}
		now := f.Now()
		v = model.View{
			ID:           id,
			ParentID:     parentID,
			Name:         p.Name,
			Desc:         p.Desc,
			Layout:       p.Layout,
			Icon:         p.Icon,
			Extra:        p.Extra,
			CreatedBy:    f.UID(),
			CreatedAt:    now,
			LastEditedBy: f.UID(),
			LastEditedAt: now,
		}
		return nil
	})
	if err != nil {
		return model.View{}, nil, err
	}

	content, err := createContent(ctx, h, v, p)
	if err != nil {
		return model.View{}, nil, err
	}

	private := p.Section != nil && *p.Section == model.VisibilityPrivate
	view, wsID, err := m.insert(v, p.Index, private, p.SetAsCurrent)
	if err != nil {
		if view.ID == "" {
			m.dropContent(ctx, h, v.ID)
		}
		return model.View{}, nil, err
	}
	m.log.Info().Str("view", view.ID).Str("parent", view.ParentID).Str("layout", view.Layout.String()).Msg("view created")
	if notifyWorkspace {
		m.emitChildViewsChanged(ctx, wsID, view.ParentID)
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID})
	}
	if p.SetAsCurrent {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceSettingUpdated, SubjectID: view.ID})
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindRecentChanged, ViewIDs: []string{view.ID}})
	}
	return view, content, nil
}

// claimID validates or allocates the id of a new view and marks it as being created.
// A second create of the same id fails until the first one returns.
func (m *Manager) claimID(raw string) (string, error) {
	id := store.NewID()
	if strings.TrimSpace(raw) != "" {
		var err error
		if id, err = store.ValidateID("view", raw); err != nil {
			return "", err
		}
	}
	if _, busy := m.creating.LoadOrStore(id, struct{}{}); busy {
		return "", errs.New(errs.CodeInvalidID, "view already exists: %s", id)
	}
	return id, nil
}

func createContent(ctx context.Context, h layout.Handler, v model.View, p CreateViewParams) ([]byte, error) {
	var (
		content []byte
		err     error
	)
	if len(p.InitialData) == 0 && len(p.Meta) == 0 {
		content, err = h.CreateDefaultView(ctx, v)
	} else {
		content, err = h.CreateViewWithInitialData(ctx, v, p.InitialData, p.Meta)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s content: %w", p.Layout, err)
	}
	return content, nil
}

// dropContent releases content created for a view that never made it into the tree.
func (m *Manager) dropContent(ctx context.Context, h layout.Handler, id string) {
	if err := h.DeleteView(ctx, id); err != nil {
		m.log.Error().Err(err).Str("view", id).Msg("release unused view content")
	}
}

// CreateOrphanView creates a view that is stored but listed under no parent, such as
// the document of a database row. It stays out of every child list until it is moved
// under a parent with MoveNestedView.
func (m *Manager) CreateOrphanView(ctx context.Context, p CreateViewParams) (model.View, []byte, error) {
	h, err := m.handler(p.Layout)
	if err != nil {
		return model.View{}, nil, err
	}
	id, err := m.claimID(p.ViewID)
	if err != nil {
		return model.View{}, nil, err
	}
	defer m.creating.Delete(id)

	var v model.View
	err = m.read(func(f *folder.Folder) error {
		if f.IsParent(id) {
			return errs.New(errs.CodeInvalidID, "view already exists: %s", id)
		}
		now := f.Now()
		v = model.View{
			ID:           id,
			ParentID:     id,
			Name:         p.Name,
			Desc:         p.Desc,
			Layout:       p.Layout,
			Icon:         p.Icon,
			Extra:        p.Extra,
			CreatedBy:    f.UID(),
			CreatedAt:    now,
			LastEditedBy: f.UID(),
			LastEditedAt: now,
		}
		return nil
	})
	if err != nil {
		return model.View{}, nil, err
	}

	content, err := createContent(ctx, h, v, p)
	if err != nil {
		return model.View{}, nil, err
	}
	var view model.View
	err = m.write(func(f *folder.Folder) error {
		res, err := mutate.InsertOrphanView(f, v)
		view = res.View
		return err
	})
	if err != nil {
		m.dropContent(ctx, h, v.ID)
		return model.View{}, nil, err
	}
	m.log.Info().Str("view", view.ID).Str("layout", view.Layout.String()).Msg("orphan view created")
	return view, content, nil
}

// insert returns a zero view when v never entered the tree.
func (m *Manager) insert(v model.View, index *int, private, setCurrent bool) (model.View, string, error) {
	var (
		out  model.View
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		res, err := mutate.InsertView(f, v, index, private)
		if err != nil {
			return err
		}
		out = res.View
		if setCurrent {
			return mutate.SetCurrentView(f, out.ID)
		}
		return nil
	})
	return out, wsID, err
}

// UpdateView applies the present fields of patch. A locked view rejects every patch that
// leaves IsLocked unset.
func (m *Manager) UpdateView(ctx context.Context, id string, patch model.ViewPatch) (model.View, error) {
	var (
		res  mutate.UpdateResult
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		if _, err := visible(f, folder.HiddenIDs(f, f.UID()), strings.TrimSpace(id)); err != nil {
			return err
		}
		var err error
		res, err = mutate.UpdateView(f, f.UID(), id, patch)
		return err
	})
	if err != nil {
		return model.View{}, err
	}
	if !res.Changed {
		return res.View, nil
	}

	var hookErr error
	if h, err := m.handler(res.View.Layout); err != nil {
		hookErr = err
	} else if err := h.DidUpdateView(ctx, res.Old, res.View); err != nil {
		hookErr = fmt.Errorf("update %s content: %w", res.View.Layout, err)
	}

	m.emitViewUpdated(ctx, wsID, res.View)
	if patch.IsFavorite != nil && *patch.IsFavorite != res.Old.IsFavorite {
		kind := notify.KindUnfavorite
		if *patch.IsFavorite {
			kind = notify.KindFavorite
		}
		m.emit(ctx, wsID, notify.Event{Kind: kind, ViewIDs: []string{res.View.ID}})
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID})
	return res.View, hookErr
}

func (m *Manager) LockView(ctx context.Context, id string) (model.View, error) {
	return m.UpdateView(ctx, id, model.ViewPatch{IsLocked: model.BoolPtr(true)})
}

func (m *Manager) UnlockView(ctx context.Context, id string) (model.View, error) {
	return m.UpdateView(ctx, id, model.ViewPatch{IsLocked: model.BoolPtr(false)})
}

// UpdateViewIcon sets the icon, or removes it when icon is nil.
func (m *Manager) UpdateViewIcon(ctx context.Context, id string, icon *model.ViewIcon) (model.View, error) {
	if icon == nil {
		return m.UpdateView(ctx, id, model.ViewPatch{RemoveIcon: true})
	}
	return m.UpdateView(ctx, id, model.ViewPatch{Icon: icon})
}

// GetView returns a visible view with its visible children.
func (m *Manager) GetView(_ context.Context, id string) (model.ViewWithChildren, error) {
	var out model.ViewWithChildren
	err := m.read(func(f *folder.Folder) error {
		hidden := folder.HiddenIDs(f, f.UID())
		v, err := visible(f, hidden, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		out = model.ViewWithChildren{View: v, Children: folder.Filter(f.Children(v.ID), hidden)}
		return nil
	})
	return out, err
}

// GetViews returns the visible views among ids in the given order, skipping the rest.
func (m *Manager) GetViews(_ context.Context, ids []string) ([]model.View, error) {
	out := make([]model.View, 0, len(ids))
	err := m.read(func(f *folder.Folder) error {
		hidden := folder.HiddenIDs(f, f.UID())
		for _, id := range ids {
			if v, err := visible(f, hidden, strings.TrimSpace(id)); err == nil {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

// AllViews returns every visible view in tree order.
func (m *Manager) AllViews(_ context.Context) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		out = folder.Filter(f.AllViews(), folder.HiddenIDs(f, f.UID()))
		return nil
	})
	return out, err
}

// ChildViews returns the stored children of parentID, trashed ones included. Private
// views of other identities are left out.
func (m *Manager) ChildViews(_ context.Context, parentID string) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		parentID = strings.TrimSpace(parentID)
		if !f.IsParent(parentID) {
			return errs.NotFound("view", parentID)
		}
		others := map[string]struct{}{}
		for _, id := range f.OtherPrivateIDs(f.UID()) {
			others[id] = struct{}{}
		}
		out = folder.Filter(f.Children(parentID), others)
		return nil
	})
	return out, err
}

// UntrashedChildViews returns the children of parentID visible to the caller.
func (m *Manager) UntrashedChildViews(_ context.Context, parentID string) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		parentID = strings.TrimSpace(parentID)
		hidden := folder.HiddenIDs(f, f.UID())
		if parentID != f.WorkspaceID() {
			if _, err := visible(f, hidden, parentID); err != nil {
				return err
			}
		}
		out = folder.Filter(f.Children(parentID), hidden)
		return nil
	})
	return out, err
}

// GetWorkspace returns the workspace with its visible top-level views.
func (m *Manager) GetWorkspace(_ context.Context) (model.WorkspaceOverview, error) {
	var out model.WorkspaceOverview
	err := m.read(func(f *folder.Folder) error {
		out = model.WorkspaceOverview{
			Workspace: f.Workspace(),
			Views:     folder.Filter(f.Children(f.WorkspaceID()), folder.HiddenIDs(f, f.UID())),
		}
		return nil
	})
	return out, err
}

// PublicViews returns visible top-level views without Private membership.
func (m *Manager) PublicViews(ctx context.Context) ([]model.View, error) {
	return m.topLevel(ctx, false)
}

// PrivateViews returns the caller's private top-level views.
func (m *Manager) PrivateViews(ctx context.Context) ([]model.View, error) {
	return m.topLevel(ctx, true)
}

func (m *Manager) topLevel(_ context.Context, private bool) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		out = make([]model.View, 0)
		for _, v := range folder.Filter(f.Children(f.WorkspaceID()), folder.HiddenIDs(f, f.UID())) {
			if f.InSection(model.SectionPrivate, v.ID) == private {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

// Ancestors returns the visible chain from the top-level view down to id, id included.
func (m *Manager) Ancestors(_ context.Context, id string) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		id = strings.TrimSpace(id)
		if !f.Exists(id) {
			return errs.NotFound("view", id)
		}
		hidden := folder.HiddenIDs(f, f.UID())
		out = make([]model.View, 0)
		for _, x := range f.AncestorIDs(id) {
			if v, err := visible(f, hidden, x); err == nil {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

// CloseView releases the content engine's open state for id.
func (m *Manager) CloseView(ctx context.Context, id string) error {
	var v model.View
	err := m.read(func(f *folder.Folder) error {
		var ok bool
		v, ok = f.Get(strings.TrimSpace(id))
		if !ok {
			return errs.NotFound("view", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	h, err := m.handler(v.Layout)
	if err != nil {
		return err
	}
	return h.CloseView(ctx, v.ID)
}

// SetViewsVisibility moves ids into (isPublic=false) or out of the caller's Private section.
func (m *Manager) SetViewsVisibility(ctx context.Context, ids []string, isPublic bool) ([]string, error) {
	var (
		changed []string
		wsID    string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		changed = mutate.SetVisibility(f, ids, isPublic)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changed) > 0 {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID, ViewIDs: changed})
	}
	return changed, nil
}

// InsertViewsAsSpaces inserts already-built views as top-level spaces. Views without
// space info in Extra are marked as public spaces.
func (m *Manager) InsertViewsAsSpaces(ctx context.Context, views []model.View) ([]model.View, error) {
	var (
		out  []model.View
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		for _, v := range views {
			stampNew(f, &v)
			v.ParentID = wsID
			info, isSpace := model.ParseSpaceInfo(v.Extra)
			if !isSpace {
				v.Extra = model.SpaceExtra(false)
			}
			res, err := mutate.InsertView(f, v, nil, isSpace && info.SpacePermission == 1)
			if err != nil {
				return err
			}
			out = append(out, res.View)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.emitChildViewsChanged(ctx, wsID, wsID)
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID})
	return out, nil
}

// InsertViewsWithParent inserts already-built views under parentID. When parentID is
// empty or unknown the most recently edited visible top-level view is used instead,
// and the workspace when there is none.
func (m *Manager) InsertViewsWithParent(ctx context.Context, views []model.View, parentID string) ([]model.View, error) {
	var (
		out    []model.View
		wsID   string
		parent string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		parent = strings.TrimSpace(parentID)
		hidden := folder.HiddenIDs(f, f.UID())
		if _, err := visible(f, hidden, parent); err != nil && parent != wsID {
			parent = lastEditedTopLevel(f, hidden)
		}
		for _, v := range views {
			stampNew(f, &v)
			v.ParentID = parent
			res, err := mutate.InsertView(f, v, nil, false)
			if err != nil {
				return err
			}
			out = append(out, res.View)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.emitChildViewsChanged(ctx, wsID, parent)
	return out, nil
}

func stampNew(f *folder.Folder, v *model.View) {
	if strings.TrimSpace(v.ID) == "" {
		v.ID = store.NewID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = f.Now()
		v.CreatedBy = f.UID()
	}
}

func lastEditedTopLevel(f *folder.Folder, hidden map[string]struct{}) string {
	best := f.WorkspaceID()
	var bestView *model.View
	for _, v := range folder.Filter(f.Children(f.WorkspaceID()), hidden) {
		if bestView == nil || v.LastEditedAt.After(bestView.LastEditedAt) {
			cp := v
			bestView = &cp
			best = v.ID
		}
	}
	return best
}

const maxSectionWalk = 20

// SharedViewSection classifies id. A shared page and everything below it is Shared.
// Otherwise the nearest enclosing space decides: Private when the view or that space is
// private, Public for a public space, a top-level view or an exhausted walk.
func (m *Manager) SharedViewSection(ctx context.Context, id string) (model.SharedSection, error) {
	id = strings.TrimSpace(id)
	var shared []string
	if m.cloud != nil {
		pages, err := m.SharedPages(ctx)
		if err != nil {
			return "", fmt.Errorf("shared pages: %w", err)
		}
		for _, p := range pages {
			shared = append(shared, p.ViewID)
		}
	}

	var out model.SharedSection
	err := m.read(func(f *folder.Folder) error {
		if !f.Exists(id) {
			return errs.NotFound("view", id)
		}
		for _, p := range shared {
			if p == id || slices.Contains(f.Descendants(p), id) {
				out = model.SharedSectionShared
				return nil
			}
		}
		if f.InSection(model.SectionPrivate, id) {
			out = model.SharedSectionPrivate
			return nil
		}
		out = model.SharedSectionPublic
		visited := folder.NewVisited()
		cur := id
		for step := 0; step < maxSectionWalk && cur != "" && cur != f.WorkspaceID(); step++ {
			if !visited.Visit(cur) {
				return nil
			}
			v, ok := f.Get(cur)
			if !ok {
				return nil
			}
			if info, ok := model.ParseSpaceInfo(v.Extra); ok {
				if info.SpacePermission == 1 || f.InSection(model.SectionPrivate, v.ID) {
					out = model.SharedSectionPrivate
				}
				return nil
			}
			cur = v.ParentID
		}
		return nil
	})
	return out, err
}
