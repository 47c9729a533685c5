package layout

// PublishContent is one of DocumentContent, DatabaseContent or Unsupported.
type PublishContent interface {
	Kind() string
}

type DocumentContent struct {
	Data []byte `json:"data"`
}

func (DocumentContent) Kind() string { return "document" }

type DatabaseContent struct {
	Database []byte `json:"database"`
	// Rows and RowDocuments are keyed by row id.
	Rows         map[string][]byte `json:"rows"`
	RowDocuments map[string][]byte `json:"rowDocuments,omitempty"`
	// Relations maps a related database id to its view id.
	Relations      map[string]string `json:"relations,omitempty"`
	VisibleViewIDs []string          `json:"visibleViewIds,omitempty"`
}

func (DatabaseContent) Kind() string { return "database" }

// Unsupported marks layouts that cannot be published.
type Unsupported struct{}

func (Unsupported) Kind() string { return "unsupported" }
