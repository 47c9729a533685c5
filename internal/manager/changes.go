package manager

import (
	"context"
	"fmt"

	"folio/internal/cloud"
	"folio/internal/folder"
	"folio/internal/notify"
	"folio/internal/store"
)

// ConsumeRecentWorkspaceChanges diffs the tree against the state seen by the previous
// call (or an empty tree on the first call) and records the current state as seen.
func (m *Manager) ConsumeRecentWorkspaceChanges(ctx context.Context) (folder.ChangeSet, error) {
	if m.state == nil {
		return folder.ChangeSet{}, nil
	}
	var (
		cur  folder.Snapshot
		b    []byte
		wsID string
	)
	err := m.read(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		cur = f.Snapshot()
		var err error
		b, err = folder.EncodeSnapshot(cur)
		return err
	})
	if err != nil {
		return folder.ChangeSet{}, err
	}

	key := store.LastSeenKey(wsID)
	prev := folder.Snapshot{Workspace: cur.Workspace}
	old, ok, err := m.state.Get(ctx, key)
	if err != nil {
		return folder.ChangeSet{}, fmt.Errorf("load last seen state: %w", err)
	}
	if ok {
		if prev, err = folder.DecodeSnapshot(old); err != nil {
			return folder.ChangeSet{}, err
		}
	}
	cs := folder.Diff(prev, cur)
	if err := m.state.Put(ctx, key, b); err != nil {
		return folder.ChangeSet{}, fmt.Errorf("save last seen state: %w", err)
	}
	return cs, nil
}

// SnapshotToCloud uploads the encoded tree as a new folder snapshot.
func (m *Manager) SnapshotToCloud(ctx context.Context) (cloud.SnapshotInfo, error) {
	svc, err := m.requireCloud()
	if err != nil {
		return cloud.SnapshotInfo{}, err
	}
	var (
		b    []byte
		wsID string
	)
	err = m.read(func(f *folder.Folder) error {
		wsID = f.WorkspaceID()
		var err error
		b, err = f.Encode()
		return err
	})
	if err != nil {
		return cloud.SnapshotInfo{}, err
	}
	return svc.PutFolderSnapshot(ctx, wsID, b)
}

func (m *Manager) FolderSnapshots(ctx context.Context, limit int) ([]cloud.SnapshotInfo, error) {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return nil, err
	}
	return svc.FolderSnapshots(ctx, ws, limit)
}

// RestoreFolderSnapshot replaces the tree with a snapshot fetched from the cloud service.
// Operations already holding the previous tree finish against it.
func (m *Manager) RestoreFolderSnapshot(ctx context.Context, key string) error {
	svc, ws, err := m.cloudWorkspace()
	if err != nil {
		return err
	}
	b, err := svc.GetFolderSnapshot(ctx, ws, key)
	if err != nil {
		return err
	}
	f, err := folder.Decode(b, m.uid)
	if err != nil {
		return err
	}
	if f.WorkspaceID() != ws {
		return fmt.Errorf("snapshot %s belongs to workspace %s", key, f.WorkspaceID())
	}
	f.SetClock(m.now)
	m.handle.Store(f)
	m.emit(ctx, ws, notify.Event{Kind: notify.KindWorkspaceUpdated, SubjectID: ws})
	return nil
}
