// Package view holds headless view models for the tab bar and the document
// container. They do not render anything; they keep one handle per tab,
// reused across changes to the tab list, for a renderer to draw from.
package view

import (
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/reconcile"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

// TabButton is the view of one tab in the tab bar.
type TabButton struct {
	Key    tabs.Key
	Label  *reactive.Signal[string]
	Active *reactive.Signal[bool]

	disposed bool
}

// Dispose marks the button as gone. Its effects are owned by the tab bar.
func (b *TabButton) Dispose() {
	b.disposed = true
}

// IsDisposed reports whether the tab closed.
func (b *TabButton) IsDisposed() bool {
	return b.disposed
}

// TabBar keeps one TabButton per open tab.
type TabBar struct {
	list *reconcile.List[tabs.Key, tabs.Item, *TabButton]
}

// NewTabBar builds the tab bar for st in the current scope.
func NewTabBar(st *app.State, opts ...reconcile.Option) *TabBar {
	rt := st.Runtime()
	reg := st.Tabs()

	build := func(it tabs.Item) *TabButton {
		b := &TabButton{
			Key:    it.Key,
			Label:  reactive.NewSignal(rt, "", reactive.Named("tabbar.label")),
			Active: reactive.NewSignal(rt, false, reactive.Named("tabbar.active")),
		}
		name := it.Entry.Name
		rt.CreateEffect(func() reactive.Cleanup {
			b.Label.Set(name.Get())
			return nil
		}, reactive.EffectName("tabbar.label"))
		rt.CreateEffect(func() reactive.Cleanup {
			k, _ := reg.ActiveKey()
			b.Active.Set(k == b.Key)
			return nil
		}, reactive.EffectName("tabbar.active"))
		return b
	}

	opts = append([]reconcile.Option{reconcile.WithName("tabbar")}, opts...)
	return &TabBar{
		list: reconcile.Each(rt, reg.Entries, func(it tabs.Item) tabs.Key { return it.Key }, build, opts...),
	}
}

// Buttons returns the buttons in tab order.
func (t *TabBar) Buttons() []*TabButton {
	return t.list.Views.Get()
}

// Button returns the button for k.
func (t *TabBar) Button(k tabs.Key) (*TabButton, bool) {
	return t.list.Lookup(k)
}

// LastPass summarizes the most recent reconciliation.
func (t *TabBar) LastPass() reconcile.Pass[tabs.Key] {
	return t.list.Reconciler().Last()
}

// Dispose removes every button.
func (t *TabBar) Dispose() {
	t.list.Dispose()
}
