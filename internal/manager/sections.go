package manager

import (
	"context"
	"slices"
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
	"folio/internal/mutate"
	"folio/internal/notify"
)

// ToggleFavorite flips the favorite state of each id.
func (m *Manager) ToggleFavorite(ctx context.Context, ids []string) (mutate.FavoriteResult, error) {
	var (
		res     mutate.FavoriteResult
		updated []model.View
		wsID    string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		res = mutate.ToggleFavorites(f, ids)
		for _, id := range append(slices.Clone(res.Favorited), res.Unfavorited...) {
			if v, ok := f.Get(id); ok {
				updated = append(updated, v)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if len(res.Favorited) > 0 {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindFavorite, ViewIDs: res.Favorited})
	}
	if len(res.Unfavorited) > 0 {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindUnfavorite, ViewIDs: res.Unfavorited})
	}
	for _, v := range updated {
		m.emitViewUpdated(ctx, wsID, v)
	}
	return res, nil
}

// Favorites returns the caller's visible favorites in the order they were added.
func (m *Manager) Favorites(ctx context.Context) ([]model.View, error) {
	return m.sectionViews(ctx, model.SectionFavorite)
}

// RecentViews returns the caller's visible recent views, most recent first.
func (m *Manager) RecentViews(ctx context.Context) ([]model.View, error) {
	out, err := m.sectionViews(ctx, model.SectionRecent)
	slices.Reverse(out)
	return out, err
}

func (m *Manager) sectionViews(_ context.Context, section model.Section) ([]model.View, error) {
	var out []model.View
	err := m.read(func(f *folder.Folder) error {
		hidden := folder.HiddenIDs(f, f.UID())
		out = make([]model.View, 0)
		for _, id := range folder.FilterIDs(f.SectionIDs(section), hidden) {
			if v, ok := f.Get(id); ok {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

func (m *Manager) AddRecentViews(ctx context.Context, ids []string) error {
	return m.updateRecent(ctx, ids, mutate.AddRecent)
}

func (m *Manager) RemoveRecentViews(ctx context.Context, ids []string) error {
	return m.updateRecent(ctx, ids, mutate.RemoveRecent)
}

func (m *Manager) updateRecent(ctx context.Context, ids []string, fn func(*folder.Folder, []string) []string) error {
	var (
		changed []string
		wsID    string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		existing := make([]string, 0, len(ids))
		for _, id := range ids {
			if id = strings.TrimSpace(id); f.Exists(id) {
				existing = append(existing, id)
			}
		}
		changed = fn(f, existing)
		return nil
	})
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindRecentChanged, ViewIDs: changed})
	}
	return nil
}

// SetCurrentView marks id as the open view and moves it to the front of recents.
func (m *Manager) SetCurrentView(ctx context.Context, id string) error {
	var wsID string
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		id = strings.TrimSpace(id)
		if _, err := visible(f, folder.HiddenIDs(f, f.UID()), id); err != nil {
			return err
		}
		return mutate.SetCurrentView(f, id)
	})
	if err != nil {
		return err
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceSettingUpdated, SubjectID: id})
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindRecentChanged, ViewIDs: []string{id}})
	return nil
}

// CurrentView returns the open view, or a RecordNotFound error when none is set or it
// is no longer visible.
func (m *Manager) CurrentView(_ context.Context) (model.View, error) {
	var out model.View
	err := m.read(func(f *folder.Folder) error {
		id := f.CurrentView()
		if id == "" {
			return errs.NotFound("current view", "")
		}
		var err error
		out, err = visible(f, folder.HiddenIDs(f, f.UID()), id)
		return err
	})
	return out, err
}
