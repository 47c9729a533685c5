package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newTrashCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Soft-delete, restore and permanently delete views",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "move <view-id>",
		Short: "Move a view (and, implicitly, its subtree) to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.MoveViewToTrash(ctx, args[0]); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"trashed": args[0]},
					"folio trash restore "+args[0], "folio trash list")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <view-id>",
		Short: "Restore a trashed view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				ok, err := s.m.RestoreTrash(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"viewId": args[0], "restored": ok})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore-all",
		Short: "Restore everything in the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				ids, err := s.m.RestoreAllTrash(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"restored": ids})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <view-id>",
		Short: "Permanently delete a trashed view and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.DeleteTrash(ctx, args[0]); err != nil {
					return partial(err)
				}
				return writeData(cmd, app, map[string]any{"deleted": args[0]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-all",
		Short: "Empty the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				ids, err := s.m.DeleteAllTrash(ctx)
				if err != nil {
					return partial(err)
				}
				return writeData(cmd, app, map[string]any{"deleted": ids})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trashed views in the order they were trashed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				items, err := s.m.TrashInfo(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, items)
			})
		},
	})

	return cmd
}
