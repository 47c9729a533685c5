package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"folio/internal/cloud"
	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

const defaultCopySuffix = " (copy)"

type DuplicateViewParams struct {
	ViewID string
	// ParentID is the destination parent; the source's parent when empty.
	ParentID           string
	IncludeChildren    bool
	OpenAfterDuplicate bool
	// Suffix is appended to the root clone's name; nil means " (copy)".
	Suffix          *string
	SyncAfterCreate bool
}

type dupTask struct {
	sourceID string
	parentID string
	root     bool
}

type dupSource struct {
	view     model.View
	private  bool
	index    *int
	children []string
}

// DuplicateView clones a view, and with IncludeChildren its visible non-chat subtree,
// under the destination parent. Clones keep their relative order and visibility. On a
// content or cloud error the views created so far are kept and the error is returned.
func (m *Manager) DuplicateView(ctx context.Context, p DuplicateViewParams) (model.ViewWithChildren, error) {
	sourceID := strings.TrimSpace(p.ViewID)
	destID := strings.TrimSpace(p.ParentID)
	if sourceID == "" {
		return model.ViewWithChildren{}, errs.NotFound("view", sourceID)
	}
	if destID == sourceID {
		return model.ViewWithChildren{}, errs.SelfOperation("cannot duplicate a view into itself")
	}
	suffix := defaultCopySuffix
	if p.Suffix != nil {
		suffix = *p.Suffix
	}

	var (
		wsID     string
		firstID  string
		rootDest string
		created  = folder.NewVisited()
		visited  = folder.NewVisited()
		objects  []cloud.CollabObject
	)
	stack := []dupTask{{sourceID: sourceID, parentID: destID, root: true}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if created.Seen(task.sourceID) || !visited.Visit(task.sourceID) {
			continue
		}

		var src dupSource
		err := m.read(func(f *folder.Folder) error {
			wsID = f.WorkspaceID()
			var err error
			src, err = duplicateSource(f, task, p.IncludeChildren)
			return err
		})
		if err != nil {
			return m.duplicateResult(ctx, firstID, err)
		}

		name := src.view.Name
		if task.root {
			if strings.TrimSpace(name) == "" {
				name = "Untitled"
			}
			name += suffix
		}
		parentID := task.parentID
		if parentID == "" {
			parentID = src.view.ParentID
		}

		h, err := m.handler(src.view.Layout)
		if err != nil {
			return m.duplicateResult(ctx, firstID, err)
		}
		data, err := h.DuplicateView(ctx, src.view.ID)
		if err != nil {
			return m.duplicateResult(ctx, firstID, fmt.Errorf("duplicate %s content: %w", src.view.ID, err))
		}

		section := model.VisibilityPublic
		if src.private {
			section = model.VisibilityPrivate
		}
		clone, content, err := m.CreateView(ctx, CreateViewParams{
			ParentID:    parentID,
			Name:        name,
			Desc:        src.view.Desc,
			Layout:      src.view.Layout,
			Icon:        src.view.Icon,
			Extra:       src.view.Extra,
			Index:       src.index,
			InitialData: data,
			Section:     &section,
		}, false)
		if err != nil {
			return m.duplicateResult(ctx, firstID, err)
		}
		created.Visit(clone.ID)
		if firstID == "" {
			firstID = clone.ID
			rootDest = clone.ParentID
		}
		objects = append(objects, cloud.CollabObject{ObjectID: clone.ID, Kind: clone.Layout.String(), Data: content})

		for i := len(src.children) - 1; i >= 0; i-- {
			stack = append(stack, dupTask{sourceID: src.children[i], parentID: clone.ID})
		}
	}

	m.log.Info().Str("source", sourceID).Str("view", firstID).Int("count", len(objects)).Msg("view duplicated")
	m.emitChildViewsChanged(ctx, wsID, rootDest)

	var syncErr error
	if p.SyncAfterCreate && len(objects) > 0 {
		if svc, err := m.requireCloud(); err != nil {
			syncErr = err
		} else if err := svc.CreateCollabObjects(ctx, wsID, objects); err != nil {
			syncErr = fmt.Errorf("sync duplicated views: %w", err)
		}
	}
	if p.OpenAfterDuplicate {
		if err := m.SetCurrentView(ctx, firstID); err != nil {
			return m.duplicateResult(ctx, firstID, err)
		}
	}
	return m.duplicateResult(ctx, firstID, syncErr)
}

func duplicateSource(f *folder.Folder, task dupTask, includeChildren bool) (dupSource, error) {
	hidden := folder.HiddenIDs(f, f.UID())
	v, err := visible(f, hidden, task.sourceID)
	if err != nil {
		return dupSource{}, err
	}
	src := dupSource{view: v, private: f.InSection(model.SectionPrivate, v.ID)}
	if task.root && (task.parentID == "" || task.parentID == v.ParentID) {
		if i := slices.Index(f.ChildIDs(v.ParentID), v.ID); i >= 0 {
			next := i + 1
			src.index = &next
		}
	}
	if includeChildren {
		for _, c := range folder.Filter(f.Children(v.ID), hidden) {
			if c.Layout == model.LayoutChat {
				continue
			}
			src.children = append(src.children, c.ID)
		}
	}
	return src, nil
}

func (m *Manager) duplicateResult(ctx context.Context, firstID string, err error) (model.ViewWithChildren, error) {
	if firstID == "" {
		return model.ViewWithChildren{}, err
	}
	out, getErr := m.GetView(ctx, firstID)
	if err != nil {
		return out, err
	}
	return out, getErr
}
