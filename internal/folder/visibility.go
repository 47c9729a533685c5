package folder

import "folio/internal/model"

// HiddenIDs returns the ids uid must not see: every trashed view of any identity plus
// its descendants, and private views owned by other identities.
func HiddenIDs(f *Folder, uid string) map[string]struct{} {
	hidden := map[string]struct{}{}
	for _, id := range f.AllSectionIDs(model.SectionTrash) {
		hidden[id] = struct{}{}
		for _, d := range f.Descendants(id) {
			hidden[d] = struct{}{}
		}
	}
	for _, id := range f.OtherPrivateIDs(uid) {
		hidden[id] = struct{}{}
	}
	return hidden
}

func Filter(views []model.View, hidden map[string]struct{}) []model.View {
	out := make([]model.View, 0, len(views))
	for _, v := range views {
		if _, ok := hidden[v.ID]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

func FilterIDs(ids []string, hidden map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := hidden[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
