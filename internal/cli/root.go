package cli

import (
	"fmt"
	"os"
	"strings"

	"folio/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Workspace  string
	UserID     string
	PrettyJSON bool
	Format     string
	LogLevel   string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "folio",
		Short:        "Folio workspace view tree (local-first)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create the default workspace and a user identity
  folio init

  # Add a page and a grid under it
  folio views create --name "Roadmap"
  folio views create --parent <view-id> --name "Tasks" --layout grid

  # Print the visible tree
  folio views tree

  # Direct view lookup (shortcut for: folio views show <view-id>)
  folio 3f2b8c1e-9d4a-4f6e-8b1a-2c3d4e5f6a7b
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("FOLIO_DIR", ""), "Path to workspace dir (advanced: overrides workspace resolution)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("FOLIO_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", envOr("FOLIO_USER", ""), "User id (overrides userId in config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("FOLIO_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("FOLIO_LOG_LEVEL", "warn"), "Log level written to stderr (debug|info|warn|error)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))
	cmd.AddCommand(newViewsCmd(app))
	cmd.AddCommand(newTrashCmd(app))
	cmd.AddCommand(newFavoritesCmd(app))
	cmd.AddCommand(newRecentCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newChangesCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newImportCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeData(cmd *cobra.Command, app *App, data any, hints ...string) error {
	return writeOut(cmd, app, format.Envelope{Data: data, Hints: hints})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
