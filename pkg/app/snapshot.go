package app

import (
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

// Snapshot is a plain-data copy of the state, for renderers and the wire.
type Snapshot struct {
	Active    uint64             `json:"active,omitempty"`
	Tabs      []TabSnapshot      `json:"tabs"`
	Documents []DocumentSnapshot `json:"documents"`
}

// TabSnapshot describes one tab.
type TabSnapshot struct {
	Key      uint64 `json:"key"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Document uint64 `json:"document,omitempty"`

	// Missing is set when the tab's document has been closed.
	Missing bool `json:"missing,omitempty"`
}

// DocumentSnapshot describes one document.
type DocumentSnapshot struct {
	Key  uint64 `json:"key"`
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`

	Content string `json:"content,omitempty"`

	Format     string  `json:"format,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Coordinate *[2]int `json:"coordinate,omitempty"`

	Form *FormSnapshot `json:"form,omitempty"`
}

// FormSnapshot is the input of a pending form.
type FormSnapshot struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Directory string `json:"directory"`
	Error     string `json:"error,omitempty"`
}

// Snapshot copies the state. Called inside an effect, it subscribes to
// every signal that contributes to the result.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Tabs:      []TabSnapshot{},
		Documents: []DocumentSnapshot{},
	}
	if k, _, ok := s.tabs.ResolveActive(); ok {
		snap.Active = uint64(k)
	}

	for _, it := range s.tabs.Entries() {
		ts := TabSnapshot{Key: uint64(it.Key), Name: it.Entry.Name.Get()}
		switch t := it.Entry.Tab.(type) {
		case tabs.HomeTab:
			ts.Kind = "home"
		case tabs.DocumentTab:
			ts.Kind = "document"
			ts.Document = uint64(t.Document)
			_, found := s.docs.Get(t.Document)
			ts.Missing = !found
		}
		snap.Tabs = append(snap.Tabs, ts)
	}

	for k, doc := range s.docs.All() {
		ds := DocumentSnapshot{Key: uint64(k), Kind: doc.Kind().String()}
		switch d := doc.(type) {
		case *documents.TextDocument:
			ds.Path = d.Path
			ds.Content = d.Content.Get()
		case *documents.ImageDocument:
			ds.Path = d.Path
			ds.Format = d.Format
			ds.Width, ds.Height = d.Width, d.Height
			if c := d.Coordinate.Get(); c.Valid {
				ds.Coordinate = &[2]int{c.X, c.Y}
			}
		case *documents.NewDocumentForm:
			fs := &FormSnapshot{
				Type:      d.Type.Get().String(),
				Name:      d.Name.Get(),
				Directory: d.Directory.Get(),
			}
			if err := d.Err.Get(); err != nil {
				fs.Error = err.Error()
			}
			ds.Form = fs
		}
		snap.Documents = append(snap.Documents, ds)
	}
	return snap
}
