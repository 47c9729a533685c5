package manager

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/cloud"
	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/layout"
	"folio/internal/model"
	"folio/internal/notify"
	"folio/internal/publish"
)

// treeSource adapts the manager to publish.Source. Each call takes the read lock on its
// own, so handlers run unlocked.
type treeSource struct {
	m *Manager
}

func (s treeSource) View(ctx context.Context, id string) (model.View, error) {
	var v model.View
	err := s.m.read(func(f *folder.Folder) error {
		var err error
		v, err = visible(f, folder.HiddenIDs(f, f.UID()), id)
		return err
	})
	return v, err
}

func (s treeSource) VisibleChildren(ctx context.Context, id string) ([]model.View, error) {
	return s.m.UntrashedChildViews(ctx, id)
}

func (s treeSource) Ancestors(ctx context.Context, id string) ([]model.View, error) {
	return s.m.Ancestors(ctx, id)
}

func (s treeSource) Handler(l model.ViewLayout) (layout.Handler, error) {
	return s.m.handler(l)
}

func (m *Manager) assembler() *publish.Assembler {
	return publish.NewAssembler(treeSource{m: m}, m.log)
}

// PublishPayloads assembles payloads without submitting them.
func (m *Manager) PublishPayloads(ctx context.Context, id, publishName string, includeChildren bool) ([]publish.Payload, error) {
	return m.assembler().BatchPayloads(ctx, id, publishName, includeChildren)
}

// PublishView publishes one view. For database views selectedViewIDs, when given,
// replaces the database views exposed by the page.
func (m *Manager) PublishView(ctx context.Context, id, publishName string, selectedViewIDs []string) (cloud.PublishInfo, error) {
	svc, err := m.requireCloud()
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	v, err := treeSource{m: m}.View(ctx, strings.TrimSpace(id))
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	if v.Layout == model.LayoutChat {
		return cloud.PublishInfo{}, errs.NotSupported("publishing chat views")
	}
	ws, err := m.Workspace()
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	if strings.TrimSpace(publishName) == "" {
		if info, err := svc.PublishInfo(ctx, ws.ID, v.ID); err == nil {
			publishName = info.PublishName
		}
	}
	p, err := m.assembler().Payload(ctx, v.ID, publishName)
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	if db, ok := p.Content.(layout.DatabaseContent); ok && len(selectedViewIDs) > 0 {
		db.VisibleViewIDs = append([]string(nil), selectedViewIDs...)
		p.Content = db
	}
	if err := m.submit(ctx, svc, []publish.Payload{p}); err != nil {
		return cloud.PublishInfo{}, err
	}
	return svc.PublishInfo(ctx, ws.ID, v.ID)
}

// PublishViews publishes id and, with includeChildren, its publishable descendants.
func (m *Manager) PublishViews(ctx context.Context, id, publishName string, includeChildren bool) ([]string, error) {
	svc, err := m.requireCloud()
	if err != nil {
		return nil, err
	}
	payloads, err := m.PublishPayloads(ctx, id, publishName, includeChildren)
	if err != nil {
		return nil, err
	}
	if err := m.submit(ctx, svc, payloads); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		ids = append(ids, p.Meta.ViewID)
	}
	return ids, nil
}

func (m *Manager) submit(ctx context.Context, svc cloud.Service, payloads []publish.Payload) error {
	if len(payloads) == 0 {
		return nil
	}
	items := make([]cloud.PublishItem, 0, len(payloads))
	for _, p := range payloads {
		b, err := publish.Encode(p)
		if err != nil {
			return fmt.Errorf("encode payload %s: %w", p.Meta.ViewID, err)
		}
		items = append(items, cloud.PublishItem{ViewID: p.Meta.ViewID, PublishName: p.Meta.PublishName, Payload: b})
	}
	ws, err := m.Workspace()
	if err != nil {
		return err
	}
	if err := svc.PublishViews(ctx, ws.ID, m.uid, items); err != nil {
		return fmt.Errorf("publish views: %w", err)
	}
	m.log.Info().Str("workspace", ws.ID).Int("count", len(items)).Msg("views published")
	return nil
}

func (m *Manager) UnpublishViews(ctx context.Context, ids []string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	return svc.Unpublish(ctx, ws, ids)
}

func (m *Manager) PublishInfo(ctx context.Context, id string) (cloud.PublishInfo, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	return svc.PublishInfo(ctx, ws, strings.TrimSpace(id))
}

func (m *Manager) SetPublishName(ctx context.Context, id, name string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	if !publish.ValidName(name) {
		return errs.New(errs.CodeInvalidID, "invalid publish name: %q", name)
	}
	return svc.SetPublishName(ctx, ws, strings.TrimSpace(id), strings.TrimSpace(name))
}

func (m *Manager) PublishNamespace(ctx context.Context) (string, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return "", err
	}
	return svc.PublishNamespace(ctx, ws)
}

func (m *Manager) SetPublishNamespace(ctx context.Context, namespace string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	if !publish.ValidName(namespace) {
		return errs.New(errs.CodeInvalidID, "invalid publish namespace: %q", namespace)
	}
	if err := svc.SetPublishNamespace(ctx, ws, strings.TrimSpace(namespace)); err != nil {
		return err
	}
	m.emit(ctx, ws, notify.Event{Kind: notify.KindWorkspaceSettingUpdated, SubjectID: ws})
	return nil
}

func (m *Manager) ListPublished(ctx context.Context) ([]cloud.PublishInfo, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return nil, err
	}
	return svc.ListPublished(ctx, ws)
}

func (m *Manager) DefaultPublishedView(ctx context.Context) (cloud.PublishInfo, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return cloud.PublishInfo{}, err
	}
	return svc.DefaultPublishedView(ctx, ws)
}

func (m *Manager) SetDefaultPublishedView(ctx context.Context, id string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	return svc.SetDefaultPublishedView(ctx, ws, strings.TrimSpace(id))
}

func (m *Manager) RemoveDefaultPublishedView(ctx context.Context) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	return svc.RemoveDefaultPublishedView(ctx, ws)
}

// SharePage grants access to a visible view and announces the shared-views change.
func (m *Manager) SharePage(ctx context.Context, id string, emails []string, access cloud.AccessLevel) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	if _, err := (treeSource{m: m}).View(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	if err := svc.SharePage(ctx, ws, strings.TrimSpace(id), emails, access); err != nil {
		return err
	}
	m.emit(ctx, ws, notify.Event{Kind: notify.KindSharedViewsChanged, SubjectID: strings.TrimSpace(id)})
	return nil
}

func (m *Manager) RevokePage(ctx context.Context, id string, emails []string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	if err := svc.RevokePage(ctx, ws, strings.TrimSpace(id), emails); err != nil {
		return err
	}
	m.emit(ctx, ws, notify.Event{Kind: notify.KindSharedViewsChanged, SubjectID: strings.TrimSpace(id)})
	return nil
}

func (m *Manager) SharedPages(ctx context.Context) ([]cloud.SharedPage, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return nil, err
	}
	return svc.SharedPages(ctx, ws)
}

func (m *Manager) cloudWorkspace() (cloud.Service, string, error) {
	svc, err := m.requireCloud()
	if err != nil {
		return nil, "", err
	}
	ws, err := m.Workspace()
	if err != nil {
		return nil, "", err
	}
	return svc, ws.ID, nil
}
