package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"folio/internal/folder"
	"folio/internal/manager"
	"folio/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

type treeNode struct {
	model.View
	Children []treeNode `json:"children,omitempty"`
}

var (
	treeNameStyle   = lipgloss.NewStyle().Bold(true)
	treeLayoutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	treeMarkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	treeGuideStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newViewsTreeCmd(app *App) *cobra.Command {
	var (
		rootID string
		depth  int
		text   bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the visible view tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, false, func(ctx context.Context, s *session) error {
				root := strings.TrimSpace(rootID)
				if root == "" {
					root = s.workspaceID()
				}
				nodes, err := buildTree(ctx, s.m, root, depth, folder.NewVisited())
				if err != nil {
					return err
				}
				if text {
					return renderTree(cmd.OutOrStdout(), nodes, width)
				}
				return writeData(cmd, app, nodes)
			})
		},
	}
	cmd.Flags().StringVar(&rootID, "root", "", "Start below this view (default: the workspace)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum depth (0 = unlimited)")
	cmd.Flags().BoolVar(&text, "text", false, "Render an indented text tree instead of JSON")
	cmd.Flags().IntVar(&width, "width", 100, "Truncate text lines to this many cells")
	return cmd
}

// buildTree collects the visible children of parentID, level by level.
func buildTree(ctx context.Context, m *manager.Manager, parentID string, depth int, visited *folder.Visited) ([]treeNode, error) {
	if !visited.Visit(parentID) {
		return nil, nil
	}
	children, err := m.UntrashedChildViews(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]treeNode, 0, len(children))
	for _, c := range children {
		n := treeNode{View: c}
		if depth != 1 {
			n.Children, err = buildTree(ctx, m, c.ID, max(depth-1, 0), visited)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func renderTree(w io.Writer, nodes []treeNode, width int) error {
	var lines []string
	var walk func(nodes []treeNode, prefix string)
	walk = func(nodes []treeNode, prefix string) {
		for i, n := range nodes {
			branch, next := "├─ ", "│  "
			if i == len(nodes)-1 {
				branch, next = "└─ ", "   "
			}
			lines = append(lines, treeGuideStyle.Render(prefix+branch)+treeLine(n.View))
			walk(n.Children, prefix+next)
		}
	}
	walk(nodes, "")

	for _, ln := range lines {
		if width > 0 && xansi.StringWidth(ln) > width {
			ln = xansi.Truncate(ln, width, "…")
		}
		if _, err := fmt.Fprintln(w, ln); err != nil {
			return err
		}
	}
	return nil
}

func treeLine(v model.View) string {
	var b strings.Builder
	if v.Icon != nil && v.Icon.Type == model.IconEmoji && v.Icon.Value != "" {
		b.WriteString(v.Icon.Value + " ")
	}
	name := v.Name
	if strings.TrimSpace(name) == "" {
		name = "Untitled"
	}
	b.WriteString(treeNameStyle.Render(name))
	b.WriteString(" " + treeLayoutStyle.Render("("+v.Layout.String()+")"))
	if v.IsFavorite {
		b.WriteString(" " + treeMarkStyle.Render("★"))
	}
	if v.Locked() {
		b.WriteString(" " + treeMarkStyle.Render("locked"))
	}
	return b.String()
}
