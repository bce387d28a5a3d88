package view

import (
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/reconcile"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

// PaneKind is what a pane currently shows.
type PaneKind uint8

const (
	PaneHome PaneKind = iota + 1
	PaneText
	PaneImage
	PaneForm

	// PaneMissing is a document tab whose document was closed.
	PaneMissing
)

func (k PaneKind) String() string {
	switch k {
	case PaneHome:
		return "home"
	case PaneText:
		return "text"
	case PaneImage:
		return "image"
	case PaneForm:
		return "form"
	case PaneMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// PaneContent is the resolved content of a pane. Document is nil for
// PaneHome and PaneMissing.
type PaneContent struct {
	Kind     PaneKind
	Key      documents.Key
	Document documents.Document
}

// Pane is the view of one tab's content.
type Pane struct {
	Tab     tabs.Key
	Content *reactive.Signal[PaneContent]

	disposed bool
}

// Dispose marks the pane as gone.
func (p *Pane) Dispose() {
	p.disposed = true
}

// IsDisposed reports whether the tab closed.
func (p *Pane) IsDisposed() bool {
	return p.disposed
}

// DocumentContainer keeps one Pane per open tab.
type DocumentContainer struct {
	st   *app.State
	list *reconcile.List[tabs.Key, tabs.Item, *Pane]
}

// NewDocumentContainer builds the container for st in the current scope.
func NewDocumentContainer(st *app.State, opts ...reconcile.Option) *DocumentContainer {
	rt := st.Runtime()
	docs := st.Documents()

	build := func(it tabs.Item) *Pane {
		p := &Pane{
			Tab:     it.Key,
			Content: reactive.NewSignal(rt, PaneContent{}, reactive.Named("pane.content")),
		}
		tab := it.Entry.Tab
		rt.CreateEffect(func() reactive.Cleanup {
			p.Content.Set(resolve(docs, tab))
			return nil
		}, reactive.EffectName("pane.content"))
		return p
	}

	opts = append([]reconcile.Option{reconcile.WithName("documents")}, opts...)
	return &DocumentContainer{
		st:   st,
		list: reconcile.Each(rt, st.Tabs().Entries, func(it tabs.Item) tabs.Key { return it.Key }, build, opts...),
	}
}

func resolve(docs *documents.Registry, tab tabs.Tab) PaneContent {
	switch t := tab.(type) {
	case tabs.HomeTab:
		return PaneContent{Kind: PaneHome}
	case tabs.DocumentTab:
		doc, ok := docs.Get(t.Document)
		if !ok {
			return PaneContent{Kind: PaneMissing, Key: t.Document}
		}
		c := PaneContent{Key: t.Document, Document: doc}
		switch doc.(type) {
		case *documents.TextDocument:
			c.Kind = PaneText
		case *documents.ImageDocument:
			c.Kind = PaneImage
		case *documents.NewDocumentForm:
			c.Kind = PaneForm
		}
		return c
	default:
		return PaneContent{Kind: PaneMissing}
	}
}

// Panes returns the panes in tab order.
func (c *DocumentContainer) Panes() []*Pane {
	return c.list.Views.Get()
}

// Pane returns the pane for k.
func (c *DocumentContainer) Pane(k tabs.Key) (*Pane, bool) {
	return c.list.Lookup(k)
}

// Active returns the pane of the active tab, or nil when no existing tab
// is selected.
func (c *DocumentContainer) Active() *Pane {
	c.list.Views.Track()
	k, _, ok := c.st.Tabs().ResolveActive()
	if !ok {
		return nil
	}
	p, _ := c.list.Lookup(k)
	return p
}

// LastPass summarizes the most recent reconciliation.
func (c *DocumentContainer) LastPass() reconcile.Pass[tabs.Key] {
	return c.list.Reconciler().Last()
}

// Dispose removes every pane.
func (c *DocumentContainer) Dispose() {
	c.list.Dispose()
}
