package publish

import (
	"encoding/json"
	"time"

	"folio/internal/layout"
	"folio/internal/model"
)

// View is the flattened form of a view inside publish metadata. ChildViews is only
// filled for entries of Metadata.ChildViews.
type View struct {
	ViewID       string           `json:"viewId"`
	Name         string           `json:"name"`
	Icon         *model.ViewIcon  `json:"icon,omitempty"`
	Layout       model.ViewLayout `json:"layout"`
	Extra        string           `json:"extra,omitempty"`
	CreatedBy    string           `json:"createdBy,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastEditedBy string           `json:"lastEditedBy,omitempty"`
	LastEditedAt time.Time        `json:"lastEditedAt"`
	ChildViews   []View           `json:"childViews,omitempty"`
}

func flatten(v model.View) View {
	return View{
		ViewID:       v.ID,
		Name:         v.Name,
		Icon:         v.Icon,
		Layout:       v.Layout,
		Extra:        v.Extra,
		CreatedBy:    v.CreatedBy,
		CreatedAt:    v.CreatedAt,
		LastEditedBy: v.LastEditedBy,
		LastEditedAt: v.LastEditedAt,
	}
}

type Metadata struct {
	View          View   `json:"view"`
	ChildViews    []View `json:"childViews"`
	AncestorViews []View `json:"ancestorViews"`
}

type Meta struct {
	ViewID      string   `json:"viewId"`
	PublishName string   `json:"publishName"`
	Metadata    Metadata `json:"metadata"`
}

// Payload is one publishable view: its metadata plus a document or database content.
type Payload struct {
	Meta    Meta
	Content layout.PublishContent
}

func (p Payload) MarshalJSON() ([]byte, error) {
	kind := ""
	if p.Content != nil {
		kind = p.Content.Kind()
	}
	return json.Marshal(struct {
		Meta Meta                  `json:"meta"`
		Kind string                `json:"kind"`
		Data layout.PublishContent `json:"data"`
	}{p.Meta, kind, p.Content})
}
