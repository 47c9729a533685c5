package cli

import (
	"context"
	"fmt"
	"strings"

	"folio/internal/publish"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish views as pages",
	}

	cmd.AddCommand(newPublishViewCmd(app))
	cmd.AddCommand(newPublishViewsCmd(app))
	cmd.AddCommand(newPublishPreviewCmd(app))
	cmd.AddCommand(newPublishExportCmd(app))
	cmd.AddCommand(newPublishUnpublishCmd(app))
	cmd.AddCommand(newPublishInfoCmd(app))
	cmd.AddCommand(newPublishNameCmd(app))
	cmd.AddCommand(newPublishNamespaceCmd(app))
	cmd.AddCommand(newPublishListCmd(app))
	cmd.AddCommand(newPublishDefaultCmd(app))

	return cmd
}

func newPublishViewCmd(app *App) *cobra.Command {
	var (
		name     string
		selected []string
	)
	cmd := &cobra.Command{
		Use:   "view <view-id>",
		Short: "Publish a single view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.applyDefaultNamespace(ctx); err != nil {
					return err
				}
				info, err := s.m.PublishView(ctx, args[0], name, selected)
				if err != nil {
					return err
				}
				return writeData(cmd, app, info, "folio publish list")
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Publish name (default: the current one, else generated)")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "Database view ids exposed by the page")
	return cmd
}

func newPublishViewsCmd(app *App) *cobra.Command {
	var (
		name     string
		children bool
	)
	cmd := &cobra.Command{
		Use:   "views <view-id>",
		Short: "Publish a view and, with --children, its publishable descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.applyDefaultNamespace(ctx); err != nil {
					return err
				}
				ids, err := s.m.PublishViews(ctx, args[0], name, children)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"published": ids}, "folio publish list")
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Publish name for the root view")
	cmd.Flags().BoolVar(&children, "children", true, "Include descendants")
	return cmd
}

func newPublishPreviewCmd(app *App) *cobra.Command {
	var (
		name  string
		style string
		width int
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "preview <view-id>",
		Short: "Render a view's publish page in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				payloads, err := s.m.PublishPayloads(ctx, args[0], name, false)
				if err != nil {
					return err
				}
				if len(payloads) == 0 {
					return fmt.Errorf("nothing to publish for %s", args[0])
				}
				md := publish.RenderMarkdown(payloads[0])
				if raw {
					_, err := fmt.Fprint(cmd.OutOrStdout(), md)
					return err
				}
				r, err := glamour.NewTermRenderer(
					glamour.WithStandardStyle(style),
					glamour.WithWordWrap(width),
				)
				if err != nil {
					return err
				}
				out, err := r.Render(md)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Publish name shown on the page")
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style (dark|light|notty|ascii)")
	cmd.Flags().IntVar(&width, "width", 80, "Word wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	return cmd
}

func newPublishExportCmd(app *App) *cobra.Command {
	var (
		toDir     string
		overwrite bool
		children  bool
		withJSON  bool
		name      string
	)
	cmd := &cobra.Command{
		Use:   "export <view-id>",
		Short: "Write publish pages as markdown files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				payloads, err := s.m.PublishPayloads(ctx, args[0], name, children)
				if err != nil {
					return err
				}
				res, err := publish.WritePayloads(payloads, toDir, publish.WriteOptions{Overwrite: overwrite, JSON: withJSON})
				if err != nil {
					return err
				}
				return writeData(cmd, app, res)
			})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&children, "children", false, "Include descendants")
	cmd.Flags().BoolVar(&withJSON, "json", false, "Also write the encoded payloads")
	cmd.Flags().StringVar(&name, "name", "", "Publish name for the root view")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newPublishUnpublishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <view-id>...",
		Short: "Withdraw published pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.m.UnpublishViews(ctx, args); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"unpublished": args})
			})
		},
	}
}

func newPublishInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info <view-id>",
		Short: "Show publish info for a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				info, err := s.m.PublishInfo(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, info)
			})
		},
	}
}

func newPublishNameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "name <view-id> <publish-name>",
		Short: "Rename a published page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.m.SetPublishName(ctx, args[0], args[1]); err != nil {
					return err
				}
				info, err := s.m.PublishInfo(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, info)
			})
		},
	}
}

func newPublishNamespaceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "namespace [namespace]",
		Short: "Show the publish namespace, or set it when one is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					if err := s.m.SetPublishNamespace(ctx, args[0]); err != nil {
						return err
					}
				}
				ns, err := s.m.PublishNamespace(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"namespace": ns})
			})
		},
	}
}

func newPublishListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				infos, err := s.m.ListPublished(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, infos)
			})
		},
	}
}

func newPublishDefaultCmd(app *App) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "default [view-id]",
		Short: "Show, set or remove the workspace's default published page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				switch {
				case remove:
					if err := s.m.RemoveDefaultPublishedView(ctx); err != nil {
						return err
					}
					return writeData(cmd, app, map[string]any{"removed": true})
				case len(args) == 1:
					if err := s.m.SetDefaultPublishedView(ctx, args[0]); err != nil {
						return err
					}
				}
				info, err := s.m.DefaultPublishedView(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, info)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the default page")
	return cmd
}

// applyDefaultNamespace adopts the configured publish namespace while the workspace
// still uses its id as namespace.
func (s *session) applyDefaultNamespace(ctx context.Context) error {
	want := strings.TrimSpace(s.cfg.PublishNamespace)
	if want == "" {
		return nil
	}
	ns, err := s.m.PublishNamespace(ctx)
	if err != nil {
		return err
	}
	if ns != s.workspaceID() {
		return nil
	}
	return s.m.SetPublishNamespace(ctx, want)
}
