// Package cloud is the client side of publishing, sharing and snapshot storage.
// Calls are fire-and-forget from the folder's point of view: a failure never rolls
// back tree state.
package cloud

import (
	"context"
	"time"
)

type PublishItem struct {
	ViewID      string
	PublishName string
	// Payload is the encoded publish payload.
	Payload []byte
}

type PublishInfo struct {
	ViewID      string    `json:"viewId"`
	PublishName string    `json:"publishName"`
	Namespace   string    `json:"namespace"`
	PublishedBy string    `json:"publishedBy,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type CollabObject struct {
	ObjectID string `json:"objectId"`
	Kind     string `json:"kind"`
	Data     []byte `json:"data"`
}

type SnapshotInfo struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type AccessLevel string

const (
	AccessReadOnly  AccessLevel = "read_only"
	AccessReadWrite AccessLevel = "read_write"
	AccessFull      AccessLevel = "full_access"
)

type ShareEntry struct {
	Email  string      `json:"email"`
	Access AccessLevel `json:"access"`
}

type SharedPage struct {
	ViewID string       `json:"viewId"`
	Shares []ShareEntry `json:"shares"`
}

type Publisher interface {
	PublishViews(ctx context.Context, workspaceID, publisherUID string, items []PublishItem) error
	Unpublish(ctx context.Context, workspaceID string, viewIDs []string) error
	PublishInfo(ctx context.Context, workspaceID, viewID string) (PublishInfo, error)
	SetPublishName(ctx context.Context, workspaceID, viewID, name string) error
	PublishNamespace(ctx context.Context, workspaceID string) (string, error)
	SetPublishNamespace(ctx context.Context, workspaceID, namespace string) error
	ListPublished(ctx context.Context, workspaceID string) ([]PublishInfo, error)
	DefaultPublishedView(ctx context.Context, workspaceID string) (PublishInfo, error)
	SetDefaultPublishedView(ctx context.Context, workspaceID, viewID string) error
	RemoveDefaultPublishedView(ctx context.Context, workspaceID string) error
}

type Sharer interface {
	SharePage(ctx context.Context, workspaceID, viewID string, emails []string, access AccessLevel) error
	RevokePage(ctx context.Context, workspaceID, viewID string, emails []string) error
	SharedPages(ctx context.Context, workspaceID string) ([]SharedPage, error)
}

type Snapshotter interface {
	PutFolderSnapshot(ctx context.Context, workspaceID string, data []byte) (SnapshotInfo, error)
	FolderSnapshots(ctx context.Context, workspaceID string, limit int) ([]SnapshotInfo, error)
	GetFolderSnapshot(ctx context.Context, workspaceID, key string) ([]byte, error)
}

type CollabSyncer interface {
	CreateCollabObjects(ctx context.Context, workspaceID string, objs []CollabObject) error
}

type Service interface {
	Publisher
	Sharer
	Snapshotter
	CollabSyncer
}
