package folder

import (
	"bytes"
	"slices"
	"sort"

	"folio/internal/model"
)

// ChangeSet lists the view ids that differ between two snapshots. A parent whose child
// order changed is reported as updated.
type ChangeSet struct {
	Added    []string `json:"added"`
	Updated  []string `json:"updated"`
	Removed  []string `json:"removed"`
	Sections bool     `json:"sectionsChanged"`
}

func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0 && !c.Sections
}

func Diff(prev, cur Snapshot) ChangeSet {
	before := viewsByID(prev.Views)
	after := viewsByID(cur.Views)
	updated := map[string]struct{}{}
	var cs ChangeSet

	for id, v := range after {
		old, ok := before[id]
		if !ok {
			cs.Added = append(cs.Added, id)
			continue
		}
		if !sameView(old, v) {
			updated[id] = struct{}{}
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			cs.Removed = append(cs.Removed, id)
		}
	}
	for parent, ids := range cur.Children {
		if _, ok := after[parent]; !ok {
			continue
		}
		if !slices.Equal(prev.Children[parent], ids) {
			if _, added := before[parent]; added {
				updated[parent] = struct{}{}
			}
		}
	}
	for id := range updated {
		cs.Updated = append(cs.Updated, id)
	}
	sort.Strings(cs.Added)
	sort.Strings(cs.Updated)
	sort.Strings(cs.Removed)

	pb, _ := encMode.Marshal(prev.Sections)
	cb, _ := encMode.Marshal(cur.Sections)
	cs.Sections = !bytes.Equal(pb, cb)
	return cs
}

func viewsByID(views []model.View) map[string]model.View {
	out := make(map[string]model.View, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out
}

func sameView(a, b model.View) bool {
	ab, err := encMode.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := encMode.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func sortedViewIDs(views map[string]*model.View) []string {
	ids := make([]string, 0, len(views))
	for id := range views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
