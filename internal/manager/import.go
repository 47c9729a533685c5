package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"folio/internal/cloud"
	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
	"folio/internal/store"
)

type ImportParams struct {
	ParentID string
	// Name defaults to the file name without extension, then "Untitled".
	Name   string
	Layout model.ViewLayout
	// Path is read by the handler; Data is used when Path is empty.
	Path    string
	Data    []byte
	Private bool
}

// ImportFile creates one view whose content is produced by the layout handler's importer.
func (m *Manager) ImportFile(ctx context.Context, p ImportParams) (model.View, []byte, error) {
	return m.importFile(ctx, p, true)
}

func (m *Manager) importFile(ctx context.Context, p ImportParams, notifyParent bool) (model.View, []byte, error) {
	h, err := m.handler(p.Layout)
	if err != nil {
		return model.View{}, nil, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" && p.Path != "" {
		base := filepath.Base(p.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		name = "Untitled"
	}

	var v model.View
	err = m.read(func(f *folder.Folder) error {
		parentID := strings.TrimSpace(p.ParentID)
		if parentID == "" {
			parentID = f.WorkspaceID()
		}
		if !f.IsParent(parentID) {
			return errs.NotFound("parent view", parentID)
		}
		now := f.Now()
		v = model.View{
			ID:           store.NewID(),
			ParentID:     parentID,
			Name:         name,
			Layout:       p.Layout,
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

	var content []byte
	if strings.TrimSpace(p.Path) != "" {
		content, err = h.ImportFromPath(ctx, v, p.Path)
	} else {
		content, err = h.ImportFromBytes(ctx, v, p.Data)
	}
	if err != nil {
		return model.View{}, nil, fmt.Errorf("import %s: %w", name, err)
	}

	view, wsID, err := m.insert(v, nil, p.Private, false)
	if err != nil {
		return model.View{}, nil, err
	}
	m.log.Info().Str("view", view.ID).Str("layout", view.Layout.String()).Msg("view imported")
	if notifyParent {
		m.emitChildViewsChanged(ctx, wsID, view.ParentID)
	}
	return view, content, nil
}

// Import imports every item, then announces the affected parents once and pushes the
// imported content to the cloud service when one is configured. Items imported before
// a failure are kept.
func (m *Manager) Import(ctx context.Context, items []ImportParams) ([]model.View, error) {
	var (
		out     []model.View
		objects []cloud.CollabObject
		parents []string
	)
	var importErr error
	for _, it := range items {
		v, content, err := m.importFile(ctx, it, false)
		if err != nil {
			importErr = err
			break
		}
		out = append(out, v)
		parents = append(parents, v.ParentID)
		objects = append(objects, cloud.CollabObject{ObjectID: v.ID, Kind: v.Layout.String(), Data: content})
	}
	if len(out) == 0 {
		return nil, importErr
	}

	ws, err := m.Workspace()
	if err != nil {
		return out, err
	}
	m.emitChildViewsChanged(ctx, ws.ID, parents...)
	m.notifyWorkspaceUpdated(ctx, ws.ID)
	if m.cloud != nil {
		if err := m.cloud.CreateCollabObjects(ctx, ws.ID, objects); err != nil && importErr == nil {
			importErr = fmt.Errorf("sync imported views: %w", err)
		}
	}
	return out, importErr
}
