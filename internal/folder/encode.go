package folder

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"folio/internal/model"
)

// Snapshot is the persisted form of a Folder. Identity is not part of it: the same
// state is shared by every identity of the workspace.
type Snapshot struct {
	Workspace   model.Workspace                                   `cbor:"1,keyasint"`
	Views       []model.View                                      `cbor:"2,keyasint"`
	Children    map[string][]string                               `cbor:"3,keyasint"`
	Sections    map[model.Section]map[string][]model.SectionItem `cbor:"4,keyasint"`
	CurrentView string                                            `cbor:"5,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

func (f *Folder) Snapshot() Snapshot {
	s := Snapshot{
		Workspace:   f.workspace,
		Views:       make([]model.View, 0, len(f.views)),
		Children:    make(map[string][]string, len(f.children)),
		Sections:    make(map[model.Section]map[string][]model.SectionItem, len(f.sections)),
		CurrentView: f.currentView,
	}
	for _, id := range sortedViewIDs(f.views) {
		s.Views = append(s.Views, *f.views[id])
	}
	for parent, ids := range f.children {
		if len(ids) == 0 {
			continue
		}
		s.Children[parent] = append([]string(nil), ids...)
	}
	for section, byUser := range f.sections {
		cp := make(map[string][]model.SectionItem, len(byUser))
		for uid, items := range byUser {
			if len(items) == 0 {
				continue
			}
			cp[uid] = append([]model.SectionItem(nil), items...)
		}
		if len(cp) > 0 {
			s.Sections[section] = cp
		}
	}
	return s
}

// FromSnapshot rebuilds a folder read by identity uid.
func FromSnapshot(s Snapshot, uid string) *Folder {
	f := New(s.Workspace, uid)
	for _, v := range s.Views {
		v.IsFavorite = false
		f.views[v.ID] = &v
	}
	for parent, ids := range s.Children {
		f.children[parent] = append([]string(nil), ids...)
	}
	for section, byUser := range s.Sections {
		cp := make(map[string][]model.SectionItem, len(byUser))
		for u, items := range byUser {
			cp[u] = append([]model.SectionItem(nil), items...)
		}
		f.sections[section] = cp
	}
	f.currentView = s.CurrentView
	return f
}

func (f *Folder) Encode() ([]byte, error) {
	return EncodeSnapshot(f.Snapshot())
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	b, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode folder: %w", err)
	}
	return b, nil
}

func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode folder: %w", err)
	}
	return s, nil
}

func Decode(b []byte, uid string) (*Folder, error) {
	s, err := DecodeSnapshot(b)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(s, uid), nil
}

// Now returns the folder clock's current time.
func (f *Folder) Now() time.Time { return f.now().UTC() }
