package cli

import (
	"context"
	"strings"

	"folio/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage and the user identity (workspace-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Ensure(); err != nil {
				return writeErr(cmd, err)
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := false
			if uid := strings.TrimSpace(userID); uid != "" && uid != cfg.UserID {
				cfg.UserID = uid
				changed = true
			}
			if strings.TrimSpace(cfg.UserID) == "" {
				cfg.UserID = store.NewID()
				changed = true
			}
			// If no current workspace is set yet, use this one.
			if cfg.CurrentWorkspace == "" && app.Workspace != "" {
				cfg.CurrentWorkspace = app.Workspace
				changed = true
			}
			if changed {
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}

			uid := cfg.UserID
			if strings.TrimSpace(app.UserID) != "" {
				uid = strings.TrimSpace(app.UserID)
			}
			ws, err := ensureWorkspace(ctx, st, app.Workspace, uid)
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeData(cmd, app, map[string]any{
				"dir":        st.Dir,
				"sqlitePath": st.SQLitePath(),
				"workspace":  ws,
				"userId":     uid,
			}, "folio views create --name <name>", "folio views tree")
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Identity to store in config.json (default: a fresh id)")
	return cmd
}
