// Package publish assembles self-contained publish payloads from the view tree and
// renders them for export.
package publish

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/layout"
	"folio/internal/model"
)

// Source is the read side of the tree seen by the reading identity. Views hidden from
// that identity are reported as not found and never listed.
type Source interface {
	View(ctx context.Context, id string) (model.View, error)
	VisibleChildren(ctx context.Context, id string) ([]model.View, error)
	// Ancestors returns the chain from the top-level view down to id, id included.
	Ancestors(ctx context.Context, id string) ([]model.View, error)
	Handler(l model.ViewLayout) (layout.Handler, error)
}

type Assembler struct {
	src Source
	log zerolog.Logger
}

func NewAssembler(src Source, log zerolog.Logger) *Assembler {
	return &Assembler{src: src, log: log}
}

// Payload builds the payload of one view. An empty publishName gets a generated one.
// Layouts without publishable content fail with a NotSupported error.
func (a *Assembler) Payload(ctx context.Context, viewID, publishName string) (Payload, error) {
	v, err := a.src.View(ctx, strings.TrimSpace(viewID))
	if err != nil {
		return Payload{}, err
	}
	return a.payload(ctx, v, publishName)
}

// BatchPayloads builds the payload of viewID and, with includeChildren, of every visible
// descendant. Descendants that fail or cannot be published are skipped.
func (a *Assembler) BatchPayloads(ctx context.Context, viewID, publishName string, includeChildren bool) ([]Payload, error) {
	root, err := a.src.View(ctx, strings.TrimSpace(viewID))
	if err != nil {
		return nil, err
	}
	out := make([]Payload, 0)
	visited := folder.NewVisited()
	stack := []model.View{root}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Visit(v.ID) {
			continue
		}

		name := ""
		if v.ID == root.ID {
			name = publishName
		}
		p, err := a.payload(ctx, v, name)
		switch {
		case err == nil:
			out = append(out, p)
		case v.ID == root.ID && !(includeChildren && errors.Is(err, errs.ErrNotSupported)):
			return nil, err
		default:
			a.log.Warn().Err(err).Str("view", v.ID).Msg("skip view in batch publish")
		}

		if !includeChildren {
			continue
		}
		children, err := a.src.VisibleChildren(ctx, v.ID)
		if err != nil {
			a.log.Warn().Err(err).Str("view", v.ID).Msg("list children for batch publish")
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out, nil
}

func (a *Assembler) payload(ctx context.Context, v model.View, publishName string) (Payload, error) {
	h, err := a.src.Handler(v.Layout)
	if err != nil {
		return Payload{}, err
	}
	content, err := h.GatherPublishContent(ctx, v)
	if err != nil {
		return Payload{}, err
	}
	if _, ok := content.(layout.Unsupported); ok || content == nil {
		return Payload{}, errs.NotSupported("publishing " + v.Layout.String() + " views")
	}
	meta, err := a.metadata(ctx, v)
	if err != nil {
		return Payload{}, err
	}
	publishName = strings.TrimSpace(publishName)
	if publishName == "" {
		publishName = DefaultName(v)
	}
	return Payload{
		Meta:    Meta{ViewID: v.ID, PublishName: publishName, Metadata: meta},
		Content: content,
	}, nil
}

func (a *Assembler) metadata(ctx context.Context, v model.View) (Metadata, error) {
	visited := folder.NewVisited()
	visited.Visit(v.ID)
	children, err := a.childViews(ctx, v.ID, visited)
	if err != nil {
		return Metadata{}, err
	}
	chain, err := a.src.Ancestors(ctx, v.ID)
	if err != nil {
		return Metadata{}, err
	}
	ancestors := make([]View, 0, len(chain))
	for _, x := range chain {
		ancestors = append(ancestors, flatten(x))
	}
	return Metadata{View: flatten(v), ChildViews: children, AncestorViews: ancestors}, nil
}

// childViews resolves the visible subtree below id. Siblings are resolved concurrently
// and keep their order; visited is shared by all branches.
func (a *Assembler) childViews(ctx context.Context, id string, visited *folder.Visited) ([]View, error) {
	children, err := a.src.VisibleChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	slots := make([]*View, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range children {
		if !visited.Visit(c.ID) {
			continue
		}
		g.Go(func() error {
			pv := flatten(c)
			sub, err := a.childViews(gctx, c.ID, visited)
			if err != nil {
				return err
			}
			pv.ChildViews = sub
			slots[i] = &pv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]View, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}
