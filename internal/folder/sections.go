package folder

import (
	"slices"
	"sort"

	"folio/internal/model"
)

// AddSection adds ids to the folder identity's membership list of section.
// Ids already present keep their original timestamp.
func (f *Folder) AddSection(section model.Section, ids []string) []string {
	byUser := f.sectionUsers(section)
	items := byUser[f.uid]
	added := make([]string, 0, len(ids))
	ts := f.now().UTC()
	for _, id := range ids {
		if containsItem(items, id) {
			continue
		}
		items = append(items, model.SectionItem{ID: id, Timestamp: ts})
		added = append(added, id)
	}
	byUser[f.uid] = items
	return added
}

// RemoveSection removes ids from the folder identity's membership list of section and
// returns the ids that were members.
func (f *Folder) RemoveSection(section model.Section, ids []string) []string {
	byUser := f.sections[section]
	if byUser == nil {
		return nil
	}
	items := byUser[f.uid]
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		i := slices.IndexFunc(items, func(it model.SectionItem) bool { return it.ID == id })
		if i < 0 {
			continue
		}
		items = slices.Delete(items, i, i+1)
		removed = append(removed, id)
	}
	byUser[f.uid] = items
	return removed
}

// ClearSection removes every membership of the folder identity in section.
func (f *Folder) ClearSection(section model.Section) []string {
	byUser := f.sections[section]
	if byUser == nil {
		return nil
	}
	ids := itemIDs(byUser[f.uid])
	delete(byUser, f.uid)
	return ids
}

// RemoveFromAllSections drops id from every section of every identity.
func (f *Folder) RemoveFromAllSections(id string) {
	for _, byUser := range f.sections {
		for uid, items := range byUser {
			byUser[uid] = slices.DeleteFunc(items, func(it model.SectionItem) bool { return it.ID == id })
		}
	}
}

func (f *Folder) InSection(section model.Section, id string) bool {
	return containsItem(f.sections[section][f.uid], id)
}

// SectionItems returns the folder identity's memberships of section in insertion order.
func (f *Folder) SectionItems(section model.Section) []model.SectionItem {
	return slices.Clone(f.sections[section][f.uid])
}

func (f *Folder) SectionIDs(section model.Section) []string {
	return itemIDs(f.sections[section][f.uid])
}

// AllSectionIDs returns the ids in section across every identity, deduplicated and sorted.
func (f *Folder) AllSectionIDs(section model.Section) []string {
	set := map[string]struct{}{}
	for _, items := range f.sections[section] {
		for _, it := range items {
			set[it.ID] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// OtherPrivateIDs returns private ids owned by identities other than uid.
func (f *Folder) OtherPrivateIDs(uid string) []string {
	mine := map[string]struct{}{}
	for _, it := range f.sections[model.SectionPrivate][uid] {
		mine[it.ID] = struct{}{}
	}
	set := map[string]struct{}{}
	for owner, items := range f.sections[model.SectionPrivate] {
		if owner == uid {
			continue
		}
		for _, it := range items {
			if _, ok := mine[it.ID]; ok {
				continue
			}
			set[it.ID] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func (f *Folder) sectionUsers(section model.Section) map[string][]model.SectionItem {
	byUser := f.sections[section]
	if byUser == nil {
		byUser = map[string][]model.SectionItem{}
		f.sections[section] = byUser
	}
	return byUser
}

func containsItem(items []model.SectionItem, id string) bool {
	return slices.ContainsFunc(items, func(it model.SectionItem) bool { return it.ID == id })
}

func itemIDs(items []model.SectionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
