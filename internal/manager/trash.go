package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
	"folio/internal/mutate"
	"folio/internal/notify"
)

// MoveViewToTrash soft-deletes id. Its favorited subtree members are unfavorited and
// reported in a single unfavorite event.
func (m *Manager) MoveViewToTrash(ctx context.Context, id string) error {
	var (
		res  mutate.TrashResult
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		var err error
		res, err = mutate.TrashView(f, id)
		return err
	})
	if err != nil {
		return err
	}

	if len(res.Unfavorited) > 0 {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindUnfavorite, ViewIDs: res.Unfavorited})
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindMovedToTrash, SubjectID: res.View.ID})
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindTrashChanged, ViewIDs: []string{res.View.ID}})
	m.emitChildViewsChanged(ctx, wsID, res.View.ParentID)
	if res.ClearedCurrent {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceSettingUpdated, SubjectID: wsID})
	}
	return nil
}

// RestoreTrash puts id back. It reports false, without error or event, when id is not in
// the caller's trash.
func (m *Manager) RestoreTrash(ctx context.Context, id string) (bool, error) {
	var (
		restored bool
		parentID string
		wsID     string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		restored = mutate.RestoreTrash(f, id)
		parentID, _ = f.ParentOf(strings.TrimSpace(id))
		return nil
	})
	if err != nil || !restored {
		return false, err
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindTrashChanged, ViewIDs: []string{strings.TrimSpace(id)}})
	m.emitChildViewsChanged(ctx, wsID, parentID)
	return true, nil
}

func (m *Manager) RestoreAllTrash(ctx context.Context) ([]string, error) {
	var (
		ids     []string
		parents []string
		wsID    string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		ids = mutate.RestoreAllTrash(f)
		for _, id := range ids {
			if p, ok := f.ParentOf(id); ok {
				parents = append(parents, p)
			}
		}
		return nil
	})
	if err != nil || len(ids) == 0 {
		return ids, err
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindTrashChanged, ViewIDs: ids})
	m.emitChildViewsChanged(ctx, wsID, parents...)
	return ids, nil
}

// DeleteTrash permanently removes a trashed view together with its whole subtree, then
// releases the content of every removed view.
func (m *Manager) DeleteTrash(ctx context.Context, id string) error {
	var (
		res  mutate.DeleteResult
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		id = strings.TrimSpace(id)
		if !f.InSection(model.SectionTrash, id) {
			return errs.NotFound("trash", id)
		}
		var err error
		res, err = mutate.DeleteView(f, id)
		return err
	})
	if err != nil {
		return err
	}
	err = m.releaseContent(ctx, res.Removed)
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindTrashChanged, ViewIDs: removedIDs(res.Removed)})
	return err
}

func (m *Manager) DeleteAllTrash(ctx context.Context) ([]string, error) {
	var (
		results []mutate.DeleteResult
		wsID    string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		results = mutate.DeleteAllTrash(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var (
		ids     []string
		errList []error
	)
	for _, res := range results {
		ids = append(ids, removedIDs(res.Removed)...)
		if err := m.releaseContent(ctx, res.Removed); err != nil {
			errList = append(errList, err)
		}
	}
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindTrashChanged, ViewIDs: ids})
	return ids, errors.Join(errList...)
}

// TrashInfo lists the caller's trash in the order items were trashed.
func (m *Manager) TrashInfo(_ context.Context) ([]model.TrashInfo, error) {
	var out []model.TrashInfo
	err := m.read(func(f *folder.Folder) error {
		out = make([]model.TrashInfo, 0)
		for _, it := range f.SectionItems(model.SectionTrash) {
			v, ok := f.Get(it.ID)
			if !ok {
				continue
			}
			out = append(out, model.TrashInfo{ID: v.ID, Name: v.Name, CreatedAt: it.Timestamp})
		}
		return nil
	})
	return out, err
}

func (m *Manager) releaseContent(ctx context.Context, views []model.View) error {
	var errList []error
	for _, v := range views {
		h, err := m.handler(v.Layout)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if err := h.DeleteView(ctx, v.ID); err != nil {
			m.log.Error().Err(err).Str("view", v.ID).Msg("release view content")
			errList = append(errList, fmt.Errorf("delete content %s: %w", v.ID, err))
		}
	}
	return errors.Join(errList...)
}

func removedIDs(views []model.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
