package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes events to a logger at debug level.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, ev Event) error {
	s.Log.Debug().
		Str("kind", string(ev.Kind)).
		Str("workspace", ev.WorkspaceID).
		Str("subject", ev.SubjectID).
		Strs("views", ev.ViewIDs).
		Msg("notify")
	return nil
}
