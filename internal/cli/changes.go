package cli

import (
	"context"
	"path/filepath"
	"strings"

	"folio/internal/manager"
	"folio/internal/model"

	"github.com/spf13/cobra"
)

func newChangesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "changes",
		Short: "Report views changed since the last call",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				cs, err := s.m.ConsumeRecentWorkspaceChanges(ctx)
				if err != nil {
					return err
				}
				cs.Added = nonNil(cs.Added)
				cs.Updated = nonNil(cs.Updated)
				cs.Removed = nonNil(cs.Removed)
				return writeData(cmd, app, cs)
			})
		},
	}
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Folder snapshots in cloud storage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload the current tree as a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				info, err := s.m.SnapshotToCloud(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, info, "folio snapshot list")
			})
		},
	})

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				infos, err := s.m.FolderSnapshots(ctx, limit)
				if err != nil {
					return err
				}
				return writeData(cmd, app, infos)
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <key>",
		Short: "Replace the tree with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.RestoreFolderSnapshot(ctx, args[0]); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"restored": args[0]}, "folio views tree")
			})
		},
	})

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var (
		parentID string
		layoutS  string
		name     string
		private  bool
	)
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import files as views (markdown as documents, csv/json as grids)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]manager.ImportParams, 0, len(args))
			for _, path := range args {
				l, err := importLayout(path, layoutS)
				if err != nil {
					return writeErr(cmd, err)
				}
				it := manager.ImportParams{
					ParentID: strings.TrimSpace(parentID),
					Layout:   l,
					Path:     path,
					Private:  private,
				}
				if len(args) == 1 {
					it.Name = name
				}
				items = append(items, it)
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				views, err := s.m.Import(ctx, items)
				if err != nil {
					return partial(err)
				}
				return writeData(cmd, app, views, "folio views tree")
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent view id (default: top-level)")
	cmd.Flags().StringVar(&layoutS, "layout", "", "Layout (default: from the file extension)")
	cmd.Flags().StringVar(&name, "name", "", "View name when importing a single file")
	cmd.Flags().BoolVar(&private, "private", false, "Import into the private section")
	return cmd
}

func importLayout(path, explicit string) (model.ViewLayout, error) {
	if strings.TrimSpace(explicit) != "" {
		return model.ParseViewLayout(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return model.LayoutGrid, nil
	default:
		return model.LayoutDocument, nil
	}
}
