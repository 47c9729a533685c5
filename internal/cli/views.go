package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"folio/internal/manager"
	"folio/internal/model"

	"github.com/spf13/cobra"
)

func newViewsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "views",
		Aliases: []string{"view"},
		Short:   "Create, inspect and rearrange views",
	}

	cmd.AddCommand(newViewsCreateCmd(app))
	cmd.AddCommand(newViewsSpaceCmd(app))
	cmd.AddCommand(newViewsShowCmd(app))
	cmd.AddCommand(newViewsGetCmd(app))
	cmd.AddCommand(newViewsListCmd(app))
	cmd.AddCommand(newViewsAllCmd(app))
	cmd.AddCommand(newViewsTopCmd(app, "public", false))
	cmd.AddCommand(newViewsTopCmd(app, "private", true))
	cmd.AddCommand(newViewsAncestorsCmd(app))
	cmd.AddCommand(newViewsTreeCmd(app))
	cmd.AddCommand(newViewsUpdateCmd(app))
	cmd.AddCommand(newViewsLockCmd(app, true))
	cmd.AddCommand(newViewsLockCmd(app, false))
	cmd.AddCommand(newViewsIconCmd(app))
	cmd.AddCommand(newViewsMoveCmd(app))
	cmd.AddCommand(newViewsMoveNestedCmd(app))
	cmd.AddCommand(newViewsDuplicateCmd(app))
	cmd.AddCommand(newViewsCurrentCmd(app))
	cmd.AddCommand(newViewsCloseCmd(app))
	cmd.AddCommand(newViewsVisibilityCmd(app))
	cmd.AddCommand(newViewsSectionCmd(app))

	return cmd
}

func newViewsCreateCmd(app *App) *cobra.Command {
	var (
		parentID string
		viewID   string
		name     string
		desc     string
		layoutS  string
		iconS    string
		iconType string
		extra    string
		index    int
		dataPath string
		section  string
		current  bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a view (top-level unless --parent is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := model.ParseViewLayout(layoutS)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := manager.CreateViewParams{
				ParentID:     strings.TrimSpace(parentID),
				ViewID:       strings.TrimSpace(viewID),
				Name:         name,
				Desc:         desc,
				Layout:       l,
				Icon:         iconFromFlags(iconS, iconType),
				Extra:        strings.TrimSpace(extra),
				SetAsCurrent: current,
			}
			if cmd.Flags().Changed("index") {
				p.Index = &index
			}
			if strings.TrimSpace(section) != "" {
				vis, err := model.ParseVisibility(section)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Section = &vis
			}
			if strings.TrimSpace(dataPath) != "" {
				b, err := os.ReadFile(dataPath)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.InitialData = b
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				v, _, err := s.m.CreateView(ctx, p, true)
				if err != nil {
					return err
				}
				return writeData(cmd, app, v, "folio views show "+v.ID)
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent view id (default: top-level)")
	cmd.Flags().StringVar(&viewID, "id", "", "Explicit view id (UUID)")
	cmd.Flags().StringVar(&name, "name", "", "View name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&layoutS, "layout", "document", "Layout (document|grid|board|calendar|chat)")
	cmd.Flags().StringVar(&iconS, "icon", "", "Icon value")
	cmd.Flags().StringVar(&iconType, "icon-type", string(model.IconEmoji), "Icon type (emoji|url|icon)")
	cmd.Flags().StringVar(&extra, "extra", "", "Extra JSON metadata")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the parent's children (default: append)")
	cmd.Flags().StringVar(&dataPath, "data", "", "File with initial content for the layout")
	cmd.Flags().StringVar(&section, "section", "", "Visibility section (public|private)")
	cmd.Flags().BoolVar(&current, "current", false, "Make the new view the current view")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newViewsSpaceCmd(app *App) *cobra.Command {
	var (
		name    string
		private bool
	)
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Create a top-level space",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				out, err := s.m.InsertViewsAsSpaces(ctx, []model.View{{
					Name:   name,
					Layout: model.LayoutDocument,
					Extra:  model.SpaceExtra(private),
				}})
				if err != nil {
					return err
				}
				if len(out) == 0 {
					return errors.New("space was not created")
				}
				return writeData(cmd, app, out[0], "folio views create --parent "+out[0].ID+" --name <name>")
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Space name")
	cmd.Flags().BoolVar(&private, "private", false, "Create a private space")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newViewsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <view-id>",
		Short: "Show a view and its visible children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				v, err := s.m.GetView(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, v)
			})
		},
	}
}

func newViewsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <view-id>...",
		Short: "Get several views by id (missing ids are skipped)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				views, err := s.m.GetViews(ctx, args)
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	}
}

func newViewsListCmd(app *App) *cobra.Command {
	var (
		parentID  string
		untrashed bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the children of a view (default: top-level views)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				pid := strings.TrimSpace(parentID)
				if pid == "" {
					pid = s.workspaceID()
				}
				var (
					views []model.View
					err   error
				)
				if untrashed {
					views, err = s.m.UntrashedChildViews(ctx, pid)
				} else {
					views, err = s.m.ChildViews(ctx, pid)
				}
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent view id")
	cmd.Flags().BoolVar(&untrashed, "untrashed", false, "Skip trashed children")
	return cmd
}

func newViewsAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every stored view, including trashed ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				views, err := s.m.AllViews(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	}
}

func newViewsTopCmd(app *App, use string, private bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "List visible top-level " + use + " views",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				var (
					views []model.View
					err   error
				)
				if private {
					views, err = s.m.PrivateViews(ctx)
				} else {
					views, err = s.m.PublicViews(ctx)
				}
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	}
}

func newViewsAncestorsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ancestors <view-id>",
		Short: "List the path from the top-level view down to the view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				views, err := s.m.Ancestors(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, views)
			})
		},
	}
}

func newViewsUpdateCmd(app *App) *cobra.Command {
	var (
		name       string
		desc       string
		layoutS    string
		extra      string
		iconS      string
		iconType   string
		removeIcon bool
		favorite   bool
	)
	cmd := &cobra.Command{
		Use:   "update <view-id>",
		Short: "Update view fields (only flags that are set are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.ViewPatch
			fl := cmd.Flags()
			if fl.Changed("name") {
				patch.Name = model.StrPtr(name)
			}
			if fl.Changed("desc") {
				patch.Desc = model.StrPtr(desc)
			}
			if fl.Changed("layout") {
				l, err := model.ParseViewLayout(layoutS)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Layout = &l
			}
			if fl.Changed("extra") {
				patch.Extra = model.StrPtr(extra)
			}
			if fl.Changed("icon") {
				patch.Icon = iconFromFlags(iconS, iconType)
			}
			patch.RemoveIcon = removeIcon
			if fl.Changed("favorite") {
				patch.IsFavorite = model.BoolPtr(favorite)
			}
			if patch.IsEmpty() {
				return writeErr(cmd, errors.New("nothing to update; pass at least one field flag"))
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				v, err := s.m.UpdateView(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return writeData(cmd, app, v)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVar(&layoutS, "layout", "", "New layout")
	cmd.Flags().StringVar(&extra, "extra", "", "New extra JSON metadata")
	cmd.Flags().StringVar(&iconS, "icon", "", "New icon value")
	cmd.Flags().StringVar(&iconType, "icon-type", string(model.IconEmoji), "Icon type (emoji|url|icon)")
	cmd.Flags().BoolVar(&removeIcon, "remove-icon", false, "Remove the icon")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Set favorite state (--favorite=false to unfavorite)")
	return cmd
}

func newViewsLockCmd(app *App, lock bool) *cobra.Command {
	use, short := "lock", "Lock a view against edits, moves and trashing"
	if !lock {
		use, short = "unlock", "Unlock a view"
	}
	return &cobra.Command{
		Use:   use + " <view-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				var (
					v   model.View
					err error
				)
				if lock {
					v, err = s.m.LockView(ctx, args[0])
				} else {
					v, err = s.m.UnlockView(ctx, args[0])
				}
				if err != nil {
					return err
				}
				return writeData(cmd, app, v)
			})
		},
	}
}

func newViewsIconCmd(app *App) *cobra.Command {
	var (
		value    string
		iconType string
		remove   bool
	)
	cmd := &cobra.Command{
		Use:   "icon <view-id>",
		Short: "Set or remove a view's icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			icon := iconFromFlags(value, iconType)
			if remove {
				icon = nil
			} else if icon == nil {
				return writeErr(cmd, errors.New("missing --value (or pass --remove)"))
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				v, err := s.m.UpdateViewIcon(ctx, args[0], icon)
				if err != nil {
					return err
				}
				return writeData(cmd, app, v)
			})
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "Icon value")
	cmd.Flags().StringVar(&iconType, "type", string(model.IconEmoji), "Icon type (emoji|url|icon)")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the icon")
	return cmd
}

func newViewsMoveCmd(app *App) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "move <view-id>",
		Short: "Reorder a view among its visible siblings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if err := s.m.MoveView(ctx, args[0], from, to); err != nil {
					return err
				}
				v, err := s.m.GetView(ctx, args[0])
				if err != nil {
					return err
				}
				siblings, err := s.m.UntrashedChildViews(ctx, v.ParentID)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{
					"viewId":   v.ID,
					"parentId": v.ParentID,
					"siblings": viewIDs(siblings),
				})
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "Current position in the visible listing")
	cmd.Flags().IntVar(&to, "to", 0, "Target position in the visible listing")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newViewsMoveNestedCmd(app *App) *cobra.Command {
	var (
		parentID    string
		after       string
		fromSection string
		toSection   string
	)
	cmd := &cobra.Command{
		Use:   "move-nested <view-id>",
		Short: "Move a view under a new parent (first child unless --after is given)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := manager.MoveNestedViewParams{
				ViewID:      args[0],
				NewParentID: strings.TrimSpace(parentID),
			}
			if cmd.Flags().Changed("after") {
				p.PrevViewID = model.StrPtr(strings.TrimSpace(after))
			}
			var err error
			if p.FromSection, err = visibilityFlag(fromSection); err != nil {
				return writeErr(cmd, err)
			}
			if p.ToSection, err = visibilityFlag(toSection); err != nil {
				return writeErr(cmd, err)
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				if p.NewParentID == "" {
					p.NewParentID = s.workspaceID()
				}
				if err := s.m.MoveNestedView(ctx, p); err != nil {
					return err
				}
				v, err := s.m.GetView(ctx, p.ViewID)
				if err != nil {
					return err
				}
				return writeData(cmd, app, v.View)
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "New parent view id (default: top-level)")
	cmd.Flags().StringVar(&after, "after", "", "Sibling to place the view after")
	cmd.Flags().StringVar(&fromSection, "from-section", "", "Section the view leaves (public|private)")
	cmd.Flags().StringVar(&toSection, "to-section", "", "Section the view joins (public|private)")
	return cmd
}

func newViewsDuplicateCmd(app *App) *cobra.Command {
	var (
		parentID string
		children bool
		open     bool
		suffix   string
		sync     bool
	)
	cmd := &cobra.Command{
		Use:   "duplicate <view-id>",
		Short: "Duplicate a view, optionally with its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := manager.DuplicateViewParams{
				ViewID:             args[0],
				ParentID:           strings.TrimSpace(parentID),
				IncludeChildren:    children,
				OpenAfterDuplicate: open,
				SyncAfterCreate:    sync,
			}
			if cmd.Flags().Changed("suffix") {
				p.Suffix = model.StrPtr(suffix)
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				v, err := s.m.DuplicateView(ctx, p)
				if err != nil {
					return partial(err)
				}
				return writeData(cmd, app, v, "folio views tree --root "+v.ID)
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "Destination parent (default: the source's parent)")
	cmd.Flags().BoolVar(&children, "children", true, "Include the visible subtree")
	cmd.Flags().BoolVar(&open, "open", false, "Make the copy the current view")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Name suffix for the copy (default: \" (copy)\")")
	cmd.Flags().BoolVar(&sync, "sync", false, "Push the copies' content to the cloud")
	return cmd
}

func newViewsCurrentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current [view-id]",
		Short: "Show the current view, or set it when an id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, len(args) == 1, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					if err := s.m.SetCurrentView(ctx, args[0]); err != nil {
						return err
					}
				}
				v, err := s.m.CurrentView(ctx)
				if err != nil {
					return err
				}
				return writeData(cmd, app, v)
			})
		},
	}
}

func newViewsCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close <view-id>",
		Short: "Release a view's open content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				if err := s.m.CloseView(ctx, args[0]); err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"closed": args[0]})
			})
		},
	}
}

func newViewsVisibilityCmd(app *App) *cobra.Command {
	var public, private bool
	cmd := &cobra.Command{
		Use:   "visibility <view-id>...",
		Short: "Make views public or private",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if public == private {
				return writeErr(cmd, errors.New("pass exactly one of --public or --private"))
			}
			return withSession(cmd, app, true, func(ctx context.Context, s *session) error {
				changed, err := s.m.SetViewsVisibility(ctx, args, public)
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"changed": changed})
			})
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "Make the views public")
	cmd.Flags().BoolVar(&private, "private", false, "Make the views private")
	return cmd
}

func newViewsSectionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "section <view-id>",
		Short: "Show whether a view lives in the public, private or shared section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				sec, err := s.m.SharedViewSection(ctx, args[0])
				if err != nil {
					return err
				}
				return writeData(cmd, app, map[string]any{"viewId": args[0], "section": sec})
			})
		},
	}
}

func iconFromFlags(value, iconType string) *model.ViewIcon {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t := model.IconType(strings.TrimSpace(iconType))
	if t == "" {
		t = model.IconEmoji
	}
	return &model.ViewIcon{Type: t, Value: value}
}

func visibilityFlag(s string) (*model.Visibility, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := model.ParseVisibility(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func viewIDs(views []model.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
