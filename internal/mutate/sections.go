package mutate

import (
	"strings"

	"folio/internal/errs"
	"folio/internal/folder"
	"folio/internal/model"
)

type FavoriteResult struct {
	Favorited   []string
	Unfavorited []string
}

// ToggleFavorites flips the favorite membership of each existing id.
func ToggleFavorites(f *folder.Folder, ids []string) FavoriteResult {
	var res FavoriteResult
	if f == nil {
		return res
	}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !f.Exists(id) {
			continue
		}
		if f.InSection(model.SectionFavorite, id) {
			res.Unfavorited = append(res.Unfavorited, f.RemoveSection(model.SectionFavorite, []string{id})...)
		} else {
			res.Favorited = append(res.Favorited, f.AddSection(model.SectionFavorite, []string{id})...)
		}
	}
	return res
}

// AddRecent moves ids to the most recent end of the recent list.
func AddRecent(f *folder.Folder, ids []string) []string {
	if f == nil {
		return nil
	}
	f.RemoveSection(model.SectionRecent, ids)
	return f.AddSection(model.SectionRecent, ids)
}

func RemoveRecent(f *folder.Folder, ids []string) []string {
	if f == nil {
		return nil
	}
	return f.RemoveSection(model.SectionRecent, ids)
}

// SetCurrentView marks id as current and records it as recent.
func SetCurrentView(f *folder.Folder, id string) error {
	id = strings.TrimSpace(id)
	if f == nil {
		return nil
	}
	if !f.Exists(id) {
		return errs.NotFound("view", id)
	}
	f.SetCurrentView(id)
	AddRecent(f, []string{id})
	return nil
}

// SetVisibility adds or removes Private membership for each existing id.
func SetVisibility(f *folder.Folder, ids []string, public bool) []string {
	if f == nil {
		return nil
	}
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if f.Exists(strings.TrimSpace(id)) {
			existing = append(existing, strings.TrimSpace(id))
		}
	}
	if public {
		f.RemoveSection(model.SectionPrivate, existing)
	} else {
		f.AddSection(model.SectionPrivate, existing)
	}
	return existing
}
