// Package manager owns the view tree of the open workspace and exposes every structural
// operation on it. The tree lock is never held while calling a layout handler, the cloud
// service or the notifier.
package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/cloud"
	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/layout"
	"folio/internal/model"
	"folio/internal/notify"
	"folio/internal/store"
)

// StateStore caches encoded tree state by key.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

type Options struct {
	// UID is the identity used until InitializeAfterSignIn names another one.
	UID      string
	Registry *layout.Registry
	// Cloud is optional; publish and sharing calls fail with NotSupported without it.
	Cloud    cloud.Service
	Notifier notify.Sender
	State    StateStore
	Logger   zerolog.Logger
	Now      func() time.Time
}

type Manager struct {
	handle   folder.Handle
	uid      string
	registry *layout.Registry
	cloud    cloud.Service
	notifier notify.Sender
	state    StateStore
	log      zerolog.Logger
	now      func() time.Time

	// creating holds ids whose content is being created outside the tree lock.
	creating sync.Map
}

func New(opt Options) *Manager {
	m := &Manager{
		uid:      strings.TrimSpace(opt.UID),
		registry: opt.Registry,
		cloud:    opt.Cloud,
		notifier: opt.Notifier,
		state:    opt.State,
		log:      opt.Logger,
		now:      opt.Now,
	}
	if m.notifier == nil {
		m.notifier = notify.Nop
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// InitializeAfterSignIn loads the workspace tree for uid and installs it, replacing any
// tree of a previous session.
func (m *Manager) InitializeAfterSignIn(ctx context.Context, uid string, ws model.Workspace) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errs.New(errs.CodeInvalidID, "missing user id")
	}
	m.uid = uid
	return m.open(ctx, ws)
}

// InitializeAfterOpenWorkspace installs the tree of ws for the current identity.
func (m *Manager) InitializeAfterOpenWorkspace(ctx context.Context, ws model.Workspace) error {
	return m.open(ctx, ws)
}

func (m *Manager) open(ctx context.Context, ws model.Workspace) error {
	if strings.TrimSpace(ws.ID) == "" {
		return errs.New(errs.CodeInvalidID, "missing workspace id")
	}
	f := folder.New(ws, m.uid)
	if m.state != nil {
		b, ok, err := m.state.Get(ctx, store.FolderStateKey(ws.ID))
		if err != nil {
			return fmt.Errorf("load folder state: %w", err)
		}
		if ok {
			decoded, err := folder.Decode(b, m.uid)
			if err != nil {
				return err
			}
			f = decoded
		}
	}
	f.SetClock(m.now)
	m.handle.Store(f)
	m.log.Info().Str("workspace", ws.ID).Str("uid", m.uid).Msg("workspace opened")
	return nil
}

// Clear drops the tree; every operation fails with NotInitialized until the next open.
func (m *Manager) Clear() {
	m.handle.Clear()
}

// Save persists the encoded tree under the workspace's state key.
func (m *Manager) Save(ctx context.Context) error {
	if m.state == nil {
		return nil
	}
	var (
		wsID string
		b    []byte
	)
	err := m.read(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		var err error
		b, err = f.Encode()
		return err
	})
	if err != nil {
		return err
	}
	if err := m.state.Put(ctx, store.FolderStateKey(wsID), b); err != nil {
		return fmt.Errorf("save folder state: %w", err)
	}
	return nil
}

func (m *Manager) UID() string { return m.uid }

func (m *Manager) Workspace() (model.Workspace, error) {
	var ws model.Workspace
	err := m.read(func(f *folder.Folder) error {
		ws = f.Workspace()
		return nil
	})
	return ws, err
}

func (m *Manager) read(fn func(f *folder.Folder) error) error {
	l, err := m.handle.Load()
	if err != nil {
		return err
	}
	return l.Read(fn)
}

func (m *Manager) write(fn func(f *folder.Folder) error) error {
	l, err := m.handle.Load()
	if err != nil {
		return err
	}
	return l.Write(fn)
}

func (m *Manager) handler(l model.ViewLayout) (layout.Handler, error) {
	return m.registry.Get(l)
}

func (m *Manager) requireCloud() (cloud.Service, error) {
	if m.cloud == nil {
		return nil, errs.NotSupported("cloud service is not configured")
	}
	return m.cloud, nil
}

// emit sends ev once. Delivery failures are logged and dropped.
func (m *Manager) emit(ctx context.Context, wsID string, ev notify.Event) {
	ev.WorkspaceID = wsID
	if ev.At.IsZero() {
		ev.At = m.now().UTC()
	}
	if err := m.notifier.Send(ctx, ev); err != nil {
		m.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("notify")
	}
}

// notifyWorkspaceUpdated is used by batch operations that create views without
// per-view events.
func (m *Manager) notifyWorkspaceUpdated(ctx context.Context, wsID string) {
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: wsID})
}

func (m *Manager) emitChildViewsChanged(ctx context.Context, wsID string, parentIDs ...string) {
	seen := map[string]struct{}{}
	for _, p := range parentIDs {
		if _, ok := seen[p]; ok || p == "" {
			continue
		}
		seen[p] = struct{}{}
		m.emit(ctx, wsID, notify.Event{Kind: notify.KindChildViewsChanged, SubjectID: p})
	}
}

func (m *Manager) emitViewUpdated(ctx context.Context, wsID string, v model.View) {
	cp := v
	m.emit(ctx, wsID, notify.Event{Kind: notify.KindViewUpdated, SubjectID: v.ID, View: &cp})
}

// visible returns the caller's view of id or a RecordNotFound error when id is absent
// or hidden. Call with the tree lock held.
func visible(f *folder.Folder, hidden map[string]struct{}, id string) (model.View, error) {
	if _, ok := hidden[id]; ok {
		return model.View{}, errs.NotFound("view", id)
	}
	v, ok := f.Get(id)
	if !ok {
		return model.View{}, errs.NotFound("view", id)
	}
	return v, nil
}
