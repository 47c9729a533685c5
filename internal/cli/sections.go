package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Favorite views",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <view-id>...",
		Short: "Flip the favorite state of each view",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				res, err := s.m.ToggleFavorite(ctx, args)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{
					"favorited":   nonNil(res.Favorited),
					"unfavorited": nonNil(res.Unfavorited),
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List visible favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				views, err := s.m.Favorites(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	})

	return cmd
}

func newRecentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Recently opened views",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <view-id>...",
		Short: "Add views to recents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.AddRecentViews(ctx, args); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"added": args})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <view-id>...",
		Short: "Remove views from recents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.RemoveRecentViews(ctx, args); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"removed": args})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List visible recents, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				views, err := s.m.RecentViews(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	})

	return cmd
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
