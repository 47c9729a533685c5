package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ViewLayout int

const (
	LayoutDocument ViewLayout = iota
	LayoutGrid
	LayoutBoard
	LayoutCalendar
	LayoutChat
)

var layoutNames = map[ViewLayout]string{
	LayoutDocument: "document",
	LayoutGrid:     "grid",
	LayoutBoard:    "board",
	LayoutCalendar: "calendar",
	LayoutChat:     "chat",
}

func (l ViewLayout) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// IsDatabase reports whether the layout is one of the database views (grid, board, calendar).
func (l ViewLayout) IsDatabase() bool {
	return l == LayoutGrid || l == LayoutBoard || l == LayoutCalendar
}

func ParseViewLayout(s string) (ViewLayout, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LayoutDocument, nil
	}
	for l, name := range layoutNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layout: %s", s)
}

func (l ViewLayout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *ViewLayout) UnmarshalText(b []byte) error {
	v, err := ParseViewLayout(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

type IconType string

const (
	IconEmoji IconType = "emoji"
	IconURL   IconType = "url"
	IconIcon  IconType = "icon"
)

type ViewIcon struct {
	Type  IconType `json:"type"`
	Value string   `json:"value"`
}

type View struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`

	Name   string     `json:"name"`
	Desc   string     `json:"desc,omitempty"`
	Layout ViewLayout `json:"layout"`
	Icon   *ViewIcon  `json:"icon,omitempty"`

	// IsFavorite is derived from the reading identity's Favorite section; it is not stored.
	IsFavorite bool  `json:"isFavorite"`
	IsLocked   *bool `json:"isLocked,omitempty"`

	// Extra is opaque JSON metadata (space info, permissions).
	Extra string `json:"extra,omitempty"`

	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastEditedBy string    `json:"lastEditedBy,omitempty"`
	LastEditedAt time.Time `json:"lastEditedAt"`
}

func (v View) Locked() bool {
	return v.IsLocked != nil && *v.IsLocked
}

type ViewWithChildren struct {
	View
	Children []View `json:"children"`
}

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type WorkspaceOverview struct {
	Workspace
	Views []View `json:"views"`
}

type Section string

const (
	SectionFavorite Section = "favorite"
	SectionRecent   Section = "recent"
	SectionTrash    Section = "trash"
	SectionPrivate  Section = "private"
)

type SectionItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Visibility is the Public/Private split of a view; Public is the absence of Private membership.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return VisibilityPublic, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("unknown visibility: %s", s)
	}
}

// SharedSection classifies where a view lives from the reader's point of view.
type SharedSection string

const (
	SharedSectionPublic  SharedSection = "public"
	SharedSectionPrivate SharedSection = "private"
	SharedSectionShared  SharedSection = "shared"
)

type TrashInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ViewPatch is a per-field optional overlay; nil fields are left unchanged.
type ViewPatch struct {
	Name       *string     `json:"name,omitempty"`
	Desc       *string     `json:"desc,omitempty"`
	Layout     *ViewLayout `json:"layout,omitempty"`
	Icon       *ViewIcon   `json:"icon,omitempty"`
	RemoveIcon bool        `json:"removeIcon,omitempty"`
	IsFavorite *bool       `json:"isFavorite,omitempty"`
	Extra      *string     `json:"extra,omitempty"`
	IsLocked   *bool       `json:"isLocked,omitempty"`
}

func (p ViewPatch) IsEmpty() bool {
	return p.Name == nil && p.Desc == nil && p.Layout == nil && p.Icon == nil && !p.RemoveIcon &&
		p.IsFavorite == nil && p.Extra == nil && p.IsLocked == nil
}

// SpaceInfo is the subset of View.Extra that marks a top-level space.
type SpaceInfo struct {
	IsSpace         bool   `json:"is_space"`
	SpacePermission int    `json:"space_permission"`
	SpaceIcon       string `json:"space_icon,omitempty"`
	SpaceIconColor  string `json:"space_icon_color,omitempty"`
}

func ParseSpaceInfo(extra string) (SpaceInfo, bool) {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return SpaceInfo{}, false
	}
	var info SpaceInfo
	if err := json.Unmarshal([]byte(extra), &info); err != nil {
		return SpaceInfo{}, false
	}
	return info, info.IsSpace
}

func SpaceExtra(private bool) string {
	perm := 0
	if private {
		perm = 1
	}
	b, _ := json.Marshal(SpaceInfo{IsSpace: true, SpacePermission: perm})
	return string(b)
}

func BoolPtr(b bool) *bool { return &b }

func StrPtr(s string) *string { return &s }
