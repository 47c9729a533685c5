package cli

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"folio/internal/cloud"
	"folio/internal/layout"
	"folio/internal/logging"
	"folio/internal/manager"
	"folio/internal/model"
	"folio/internal/notify"
	"folio/internal/store"

	"github.com/spf13/cobra"
)

// session is one command's view of the open workspace.
type session struct {
	app *App
	st  store.Store
	cfg *store.GlobalConfig
	log *logging.Log
	m   *manager.Manager

	closers []func() error
}

func resolveStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		// Workspace-first:
		// 1) --workspace
		// 2) ~/.folio/config.json currentWorkspace
		// 3) default workspace ("default")
		if app.Workspace == "" {
			if cfg, err := store.LoadConfig(); err == nil && cfg.CurrentWorkspace != "" {
				app.Workspace = cfg.CurrentWorkspace
			} else {
				app.Workspace = "default"
			}
		}
		d, err := store.WorkspaceDir(app.Workspace)
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	if app.Workspace == "" {
		app.Workspace = filepath.Base(dir)
	}
	return store.Store{Dir: dir}, nil
}

func currentUserID(app *App, cfg *store.GlobalConfig) (string, error) {
	if uid := strings.TrimSpace(app.UserID); uid != "" {
		return uid, nil
	}
	if cfg != nil && strings.TrimSpace(cfg.UserID) != "" {
		return strings.TrimSpace(cfg.UserID), nil
	}
	return "", errors.New("no current user; run `folio init` (or pass --user)")
}

// openSession resolves the workspace, wires the manager's collaborators and installs
// the workspace tree.
func openSession(ctx context.Context, app *App, logOut io.Writer) (*session, error) {
	st, err := resolveStore(app)
	if err != nil {
		return nil, err
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	uid, err := currentUserID(app, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{app: app, st: st, cfg: cfg}
	s.log, err = logging.New().FromWriter(logOut).Level(app.LogLevel).Make()
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, s.log.Close)
	logger := s.log.With().Str("workspace", app.Workspace).Logger()

	ws, err := ensureWorkspace(ctx, st, app.Workspace, uid)
	if err != nil {
		s.close()
		return nil, err
	}
	svc, err := s.cloudService(ctx)
	if err != nil {
		s.close()
		return nil, err
	}
	sender, err := s.notifier()
	if err != nil {
		s.close()
		return nil, err
	}

	s.m = manager.New(manager.Options{
		UID:      uid,
		Registry: layout.NewDefaultRegistry(st),
		Cloud:    svc,
		Notifier: sender,
		State:    st,
		Logger:   logger,
	})
	if err := s.m.InitializeAfterOpenWorkspace(ctx, ws); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func ensureWorkspace(ctx context.Context, st store.Store, name, uid string) (model.Workspace, error) {
	ws, ok, err := st.LoadWorkspace(ctx)
	if err != nil || ok {
		return ws, err
	}
	ws = model.Workspace{
		ID:        store.NewID(),
		Name:      name,
		CreatedBy: uid,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.SaveWorkspace(ctx, ws); err != nil {
		return model.Workspace{}, err
	}
	return ws, nil
}

// cloudService uses the configured S3 endpoint, or a directory below the workspace.
func (s *session) cloudService(ctx context.Context) (cloud.Service, error) {
	c := s.cfg.Cloud
	if c == nil || strings.TrimSpace(c.Endpoint) == "" {
		return cloud.NewObjectService(cloud.DirBackend{Root: filepath.Join(s.st.Dir, "cloud")}), nil
	}
	bucket := strings.TrimSpace(c.Bucket)
	if bucket == "" {
		bucket = "folio"
	}
	b, err := cloud.NewMinioBackend(c.Endpoint, c.AccessKey, c.SecretKey, bucket, c.UseSSL)
	if err != nil {
		return nil, err
	}
	if err := b.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return cloud.NewObjectService(b), nil
}

func (s *session) notifier() (notify.Sender, error) {
	senders := notify.Multi{notify.LogSender{Log: s.log.Logger}}
	redisURL := envOr("FOLIO_REDIS_URL", "")
	channel := ""
	if n := s.cfg.Notify; n != nil {
		if redisURL == "" {
			redisURL = strings.TrimSpace(n.RedisURL)
		}
		if strings.TrimSpace(n.Channel) != "" {
			channel = strings.TrimSpace(n.Channel)
		}
	}
	if redisURL == "" {
		return senders, nil
	}
	pub, err := notify.NewRedisPublisher(redisURL, channel)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, pub.Close)
	return append(senders, pub), nil
}

// commit persists the tree after a mutating command.
func (s *session) commit(ctx context.Context) error {
	return s.m.Save(ctx)
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.closers = nil
}

// partialError marks a failure reported after the tree already changed.
type partialError struct{ err error }

func (e partialError) Error() string { return e.err.Error() }
func (e partialError) Unwrap() error { return e.err }

// partial wraps err so that withSession still saves the tree before reporting it.
func partial(err error) error {
	if err == nil {
		return nil
	}
	return partialError{err: err}
}

// withSession runs fn against an open session and saves the tree when save is set.
// A failed fn skips the save unless its error is marked partial.
func withSession(cmd *cobra.Command, app *App, save bool, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, app, cmd.ErrOrStderr())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.close()
	if err := fn(ctx, s); err != nil {
		var pe partialError
		if save && errors.As(err, &pe) {
			if cerr := s.commit(ctx); cerr != nil {
				err = errors.Join(pe.err, cerr)
			} else {
				err = pe.err
			}
		}
		return writeErr(cmd, err)
	}
	if save {
		if err := s.commit(ctx); err != nil {
			return writeErr(cmd, err)
		}
	}
	return nil
}

func (s *session) workspaceID() string {
	ws, err := s.m.Workspace()
	if err != nil {
		return ""
	}
	return ws.ID
}
