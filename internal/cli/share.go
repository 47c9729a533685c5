package cli

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/cloud"

	"github.com/spf13/cobra"
)

func newShareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share views with people by email",
	}

	var access string
	grant := &cobra.Command{
		Use:   "grant <view-id> <email>...",
		Short: "Grant access to a view",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseAccess(access)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.m.SharePage(ctx, args[0], args[1:], level); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"viewId": args[0], "emails": args[1:], "access": level},
					"folio share list")
			})
		},
	}
	grant.Flags().StringVar(&access, "access", string(cloud.AccessReadOnly), "Access level (read_only|read_write|full_access)")
	cmd.AddCommand(grant)

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <view-id> <email>...",
		Short: "Revoke access to a view",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.m.RevokePage(ctx, args[0], args[1:]); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"viewId": args[0], "revoked": args[1:]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List shared views",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				pages, err := s.m.SharedPages(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, pages)
			})
		},
	})

	return cmd
}

func parseAccess(s string) (cloud.AccessLevel, error) {
	switch l := cloud.AccessLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case cloud.AccessReadOnly, cloud.AccessReadWrite, cloud.AccessFull:
		return l, nil
	default:
		return "", fmt.Errorf("unknown access level: %s", s)
	}
}
