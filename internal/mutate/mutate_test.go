package mutate

import (
	"folio/internal/folder"
	"folio/internal/model"
)

func newFolder(uid string) *folder.Folder {
	return folder.New(model.Workspace{ID: "ws", Name: "Workspace"}, uid)
}

func mustInsert(f *folder.Folder, id, parent string) {
	if _, err := InsertView(f, model.View{ID: id, ParentID: parent, Name: id}, nil, false); err != nil {
		panic(err)
	}
}
