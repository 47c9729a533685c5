// Package notify delivers change events to whoever renders the workspace.
// Delivery is at most once: senders never retry and a slow subscriber drops events.
package notify

import (
	"context"
	"errors"
	"time"

	"folio/internal/model"
)

type Kind string

const (
	KindViewUpdated             Kind = "view_updated"
	KindMovedToTrash            Kind = "moved_to_trash"
	KindFavorite                Kind = "favorite"
	KindUnfavorite              Kind = "unfavorite"
	KindRecentChanged           Kind = "recent_changed"
	KindTrashChanged            Kind = "trash_changed"
	KindSharedViewsChanged      Kind = "shared_views_changed"
	KindWorkspaceUpdated        Kind = "workspace_updated"
	KindChildViewsChanged       Kind = "child_views_changed"
	KindWorkspaceSettingUpdated Kind = "workspace_setting_updated"
)

type Event struct {
	Kind        Kind   `json:"kind"`
	WorkspaceID string `json:"workspaceId"`
	// SubjectID is the view (or workspace) the event is about.
	SubjectID string      `json:"subjectId,omitempty"`
	ViewIDs   []string    `json:"viewIds,omitempty"`
	View      *model.View `json:"view,omitempty"`
	At        time.Time   `json:"at"`
}

type Sender interface {
	Send(ctx context.Context, ev Event) error
}

type nop struct{}

func (nop) Send(context.Context, Event) error { return nil }

// Nop drops every event.
var Nop Sender = nop{}

// Multi fans an event out to every sender and joins their errors.
type Multi []Sender

func (m Multi) Send(ctx context.Context, ev Event) error {
	var errList []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, ev); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
