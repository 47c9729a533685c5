package manager

import (
	"context"

	"folio/internal/folder"
	"folio/internal/model"
	"folio/internal/mutate"
	"folio/internal/notify"
)

// MoveView reorders id among its siblings. from and to are positions in the caller's
// filtered listing; from is informational, the moved view is found by id.
func (m *Manager) MoveView(ctx context.Context, id string, from, to int) error {
	var (
		res  mutate.MoveResult
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		hidden := folder.HiddenIDs(f, f.UID())
		if _, err := visible(f, hidden, id); err != nil {
			return err
		}
		var err error
		res, err = mutate.MoveView(f, id, to, hidden)
		return err
	})
	if err != nil {
		return err
	}
	m.log.Debug().Str("view", id).Int("from", from).Int("to", to).Bool("changed", res.Changed).Msg("move view")
	if res.Changed {
		m.emitChildViewsChanged(ctx, wsID, res.ParentID)
	}
	return nil
}

type MoveNestedViewParams struct {
	ViewID      string
	NewParentID string
	// PrevViewID places the view right after that sibling; nil makes it the first child.
	PrevViewID  *string
	FromSection *model.Visibility
	ToSection   *model.Visibility
}

// MoveNestedView reparents a view. Moving a view into itself or below itself is rejected.
func (m *Manager) MoveNestedView(ctx context.Context, p MoveNestedViewParams) error {
	var (
		res  mutate.NestedMoveResult
		wsID string
	)
	err := m.write(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		if _, err := visible(f, folder.HiddenIDs(f, f.UID()), p.ViewID); err != nil {
			return err
		}
		var err error
		res, err = mutate.MoveNestedView(f, p.ViewID, p.NewParentID, p.PrevViewID, p.FromSection, p.ToSection)
		return err
	})
	if err != nil {
		return err
	}
	if !res.Changed {
		return nil
	}
	m.emitChildViewsChanged(ctx, wsID, res.OldParentID, res.NewParentID)
	if p.FromSection != nil && p.ToSection != nil && *p.FromSection != *p.ToSection {
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID, ViewIDs: []string{p.ViewID}})
	}
	return nil
}
