package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"folio/internal/errs"
)

// ObjectService implements Service on top of a Backend. Objects are laid out per
// workspace:
//
//	<ws>/published/<view>.json        publish info
//	<ws>/pages/<namespace>/<name>.json publish payload
//	<ws>/namespace, <ws>/default-view
//	<ws>/shares/<view>.json
//	<ws>/snapshots/<unix-nanos>.bin
//	<ws>/collab/<object>.bin
type ObjectService struct {
	backend Backend
	now     func() time.Time

	// mu serializes read-modify-write sequences within this process.
	mu sync.Mutex
}

func NewObjectService(b Backend) *ObjectService {
	return &ObjectService{backend: b, now: time.Now}
}

func (s *ObjectService) PublishViews(ctx context.Context, workspaceID, publisherUID string, items []PublishItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.namespaceOrDefault(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.ensureNameFree(ctx, workspaceID, it.ViewID, it.PublishName); err != nil {
			return err
		}
		if old, err := s.publishInfo(ctx, workspaceID, it.ViewID); err == nil && old.PublishName != it.PublishName {
			_ = s.backend.Delete(ctx, pageKey(workspaceID, old.Namespace, old.PublishName))
		}
		if err := s.backend.Put(ctx, pageKey(workspaceID, ns, it.PublishName), it.Payload); err != nil {
			return fmt.Errorf("publish %s: %w", it.ViewID, err)
		}
		info := PublishInfo{
			ViewID:      it.ViewID,
			PublishName: it.PublishName,
			Namespace:   ns,
			PublishedBy: publisherUID,
			PublishedAt: s.now().UTC(),
		}
		if err := s.putJSON(ctx, publishedKey(workspaceID, it.ViewID), info); err != nil {
			return err
		}
	}
	return nil
}

func (s *ObjectService) Unpublish(ctx context.Context, workspaceID string, viewIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range viewIDs {
		info, err := s.publishInfo(ctx, workspaceID, id)
		if errors.Is(err, errs.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.backend.Delete(ctx, pageKey(workspaceID, info.Namespace, info.PublishName)); err != nil {
			return err
		}
		if err := s.backend.Delete(ctx, publishedKey(workspaceID, id)); err != nil {
			return err
		}
		if def, err := s.getText(ctx, defaultViewKey(workspaceID)); err == nil && def == id {
			_ = s.backend.Delete(ctx, defaultViewKey(workspaceID))
		}
	}
	return nil
}

func (s *ObjectService) PublishInfo(ctx context.Context, workspaceID, viewID string) (PublishInfo, error) {
	return s.publishInfo(ctx, workspaceID, viewID)
}

func (s *ObjectService) SetPublishName(ctx context.Context, workspaceID, viewID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("publish name is empty")
	}
	info, err := s.publishInfo(ctx, workspaceID, viewID)
	if err != nil {
		return err
	}
	if info.PublishName == name {
		return nil
	}
	if err := s.ensureNameFree(ctx, workspaceID, viewID, name); err != nil {
		return err
	}
	payload, err := s.backend.Get(ctx, pageKey(workspaceID, info.Namespace, info.PublishName))
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, pageKey(workspaceID, info.Namespace, name), payload); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, pageKey(workspaceID, info.Namespace, info.PublishName)); err != nil {
		return err
	}
	info.PublishName = name
	return s.putJSON(ctx, publishedKey(workspaceID, viewID), info)
}

func (s *ObjectService) PublishNamespace(ctx context.Context, workspaceID string) (string, error) {
	ns, err := s.getText(ctx, namespaceKey(workspaceID))
	if err != nil {
		return "", err
	}
	return ns, nil
}

func (s *ObjectService) SetPublishNamespace(ctx context.Context, workspaceID, namespace string) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" || strings.ContainsAny(namespace, "/ ") {
		return fmt.Errorf("invalid publish namespace: %q", namespace)
	}
	return s.backend.Put(ctx, namespaceKey(workspaceID), []byte(namespace))
}

func (s *ObjectService) ListPublished(ctx context.Context, workspaceID string) ([]PublishInfo, error) {
	keys, err := s.backend.List(ctx, workspaceID+"/published/")
	if err != nil {
		return nil, err
	}
	out := make([]PublishInfo, 0, len(keys))
	for _, k := range keys {
		var info PublishInfo
		if err := s.getJSON(ctx, k, &info); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishName < out[j].PublishName })
	return out, nil
}

func (s *ObjectService) DefaultPublishedView(ctx context.Context, workspaceID string) (PublishInfo, error) {
	id, err := s.getText(ctx, defaultViewKey(workspaceID))
	if err != nil {
		return PublishInfo{}, err
	}
	return s.publishInfo(ctx, workspaceID, id)
}

func (s *ObjectService) SetDefaultPublishedView(ctx context.Context, workspaceID, viewID string) error {
	if _, err := s.publishInfo(ctx, workspaceID, viewID); err != nil {
		return err
	}
	return s.backend.Put(ctx, defaultViewKey(workspaceID), []byte(viewID))
}

func (s *ObjectService) RemoveDefaultPublishedView(ctx context.Context, workspaceID string) error {
	return s.backend.Delete(ctx, defaultViewKey(workspaceID))
}

func (s *ObjectService) SharePage(ctx context.Context, workspaceID, viewID string, emails []string, access AccessLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.shares(ctx, workspaceID, viewID)
	if err != nil {
		return err
	}
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		i := slices.IndexFunc(shares, func(e ShareEntry) bool { return e.Email == email })
		if i >= 0 {
			shares[i].Access = access
			continue
		}
		shares = append(shares, ShareEntry{Email: email, Access: access})
	}
	return s.putJSON(ctx, shareKey(workspaceID, viewID), shares)
}

func (s *ObjectService) RevokePage(ctx context.Context, workspaceID, viewID string, emails []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.shares(ctx, workspaceID, viewID)
	if err != nil {
		return err
	}
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		shares = slices.DeleteFunc(shares, func(e ShareEntry) bool { return e.Email == email })
	}
	if len(shares) == 0 {
		return s.backend.Delete(ctx, shareKey(workspaceID, viewID))
	}
	return s.putJSON(ctx, shareKey(workspaceID, viewID), shares)
}

func (s *ObjectService) SharedPages(ctx context.Context, workspaceID string) ([]SharedPage, error) {
	prefix := workspaceID + "/shares/"
	keys, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]SharedPage, 0, len(keys))
	for _, k := range keys {
		var shares []ShareEntry
		if err := s.getJSON(ctx, k, &shares); err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(strings.TrimPrefix(k, prefix), ".json")
		out = append(out, SharedPage{ViewID: id, Shares: shares})
	}
	return out, nil
}

func (s *ObjectService) PutFolderSnapshot(ctx context.Context, workspaceID string, data []byte) (SnapshotInfo, error) {
	now := s.now().UTC()
	key := fmt.Sprintf("%s/snapshots/%020d.bin", workspaceID, now.UnixNano())
	if err := s.backend.Put(ctx, key, data); err != nil {
		return SnapshotInfo{}, fmt.Errorf("put snapshot: %w", err)
	}
	return SnapshotInfo{Key: key, Size: len(data), CreatedAt: now}, nil
}

// FolderSnapshots lists snapshots newest first; limit <= 0 means all.
func (s *ObjectService) FolderSnapshots(ctx context.Context, workspaceID string, limit int) ([]SnapshotInfo, error) {
	keys, err := s.backend.List(ctx, workspaceID+"/snapshots/")
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]SnapshotInfo, 0, len(keys))
	for _, k := range keys {
		data, err := s.backend.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		info := SnapshotInfo{Key: k, Size: len(data)}
		var nanos int64
		if _, err := fmt.Sscanf(path.Base(k), "%d.bin", &nanos); err == nil {
			info.CreatedAt = time.Unix(0, nanos).UTC()
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *ObjectService) GetFolderSnapshot(ctx context.Context, workspaceID, key string) ([]byte, error) {
	if !strings.HasPrefix(key, workspaceID+"/snapshots/") {
		return nil, errs.NotFound("snapshot", key)
	}
	return s.backend.Get(ctx, key)
}

func (s *ObjectService) CreateCollabObjects(ctx context.Context, workspaceID string, objs []CollabObject) error {
	for _, o := range objs {
		if err := s.backend.Put(ctx, fmt.Sprintf("%s/collab/%s.bin", workspaceID, o.ObjectID), o.Data); err != nil {
			return fmt.Errorf("create collab object %s: %w", o.ObjectID, err)
		}
	}
	return nil
}

func (s *ObjectService) namespaceOrDefault(ctx context.Context, workspaceID string) (string, error) {
	ns, err := s.getText(ctx, namespaceKey(workspaceID))
	if errors.Is(err, errs.ErrRecordNotFound) {
		return workspaceID, nil
	}
	return ns, err
}

func (s *ObjectService) ensureNameFree(ctx context.Context, workspaceID, viewID, name string) error {
	all, err := s.ListPublished(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, info := range all {
		if info.PublishName == name && info.ViewID != viewID {
			return fmt.Errorf("publish name %q is already used by view %s", name, info.ViewID)
		}
	}
	return nil
}

func (s *ObjectService) publishInfo(ctx context.Context, workspaceID, viewID string) (PublishInfo, error) {
	var info PublishInfo
	if err := s.getJSON(ctx, publishedKey(workspaceID, viewID), &info); err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return PublishInfo{}, errs.NotFound("publish info", viewID)
		}
		return PublishInfo{}, err
	}
	return info, nil
}

func (s *ObjectService) shares(ctx context.Context, workspaceID, viewID string) ([]ShareEntry, error) {
	var shares []ShareEntry
	err := s.getJSON(ctx, shareKey(workspaceID, viewID), &shares)
	if errors.Is(err, errs.ErrRecordNotFound) {
		return nil, nil
	}
	return shares, err
}

func (s *ObjectService) getText(ctx context.Context, key string) (string, error) {
	b, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *ObjectService) getJSON(ctx context.Context, key string, v any) error {
	b, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *ObjectService) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, key, b)
}

func publishedKey(ws, viewID string) string { return ws + "/published/" + viewID + ".json" }

func pageKey(ws, ns, name string) string { return ws + "/pages/" + ns + "/" + name + ".json" }

func namespaceKey(ws string) string { return ws + "/namespace" }

func defaultViewKey(ws string) string { return ws + "/default-view" }

func shareKey(ws, viewID string) string { return ws + "/shares/" + viewID + ".json" }
