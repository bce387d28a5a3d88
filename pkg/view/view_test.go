package view

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

func setup(t *testing.T, names ...string) (*app.State, []tabs.Key, []documents.Key) {
	t.Helper()
	dir := t.TempDir()
	st := app.New(reactive.NewRuntime())
	t.Cleanup(st.Dispose)

	var docKeys []documents.Key
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		k, err := st.OpenDocument(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		docKeys = append(docKeys, k)
	}
	var tabKeys []tabs.Key
	for _, it := range st.Tabs().Entries() {
		tabKeys = append(tabKeys, it.Key)
	}
	return st, tabKeys, docKeys
}

func buttonKeys(bs []*TabButton) []tabs.Key {
	keys := make([]tabs.Key, len(bs))
	for i, b := range bs {
		keys[i] = b.Key
	}
	return keys
}

func TestTabBarFollowsTabs(t *testing.T) {
	st, keys, _ := setup(t, "1.txt", "2.txt", "3.txt")
	bar := NewTabBar(st)
	defer bar.Dispose()

	before := bar.Buttons()
	if diff := cmp.Diff(keys, buttonKeys(before)); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}
	var labels []string
	for _, b := range before {
		labels = append(labels, b.Label.Peek())
	}
	if diff := cmp.Diff([]string{"1.txt", "2.txt", "3.txt"}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if !before[2].Active.Peek() || before[0].Active.Peek() {
		t.Error("active flag does not follow the selection")
	}

	st.CloseTab(keys[1])

	after := bar.Buttons()
	if diff := cmp.Diff([]tabs.Key{keys[0], keys[2]}, buttonKeys(after)); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}
	if after[0] != before[0] || after[1] != before[2] {
		t.Error("surviving buttons were rebuilt")
	}
	if !before[1].IsDisposed() {
		t.Error("closed tab's button not disposed")
	}
}

func TestTabBarRenameUpdatesOneButton(t *testing.T) {
	st, keys, _ := setup(t, "a.txt", "b.txt")
	bar := NewTabBar(st)
	defer bar.Dispose()

	passes := bar.LastPass()
	labels := 0
	b0, _ := bar.Button(keys[0])
	st.Runtime().OnUpdate(b0.Label.Track, func() { labels++ })

	entry, _ := st.Tabs().Get(keys[0])
	entry.Name.Set("renamed")

	if b0.Label.Peek() != "renamed" {
		t.Errorf("label = %q", b0.Label.Peek())
	}
	if labels != 1 {
		t.Errorf("label updates = %d, want 1", labels)
	}
	if diff := cmp.Diff(passes, bar.LastPass()); diff != "" {
		t.Errorf("rename reconciled the tab list (-before +after):\n%s", diff)
	}
	b1, _ := bar.Button(keys[1])
	if b1.Label.Peek() != "b.txt" {
		t.Errorf("other label = %q", b1.Label.Peek())
	}
}

func TestTabBarCloseMiddleTab(t *testing.T) {
	st, keys, _ := setup(t, "1.txt", "2.txt", "3.txt")
	bar := NewTabBar(st)
	defer bar.Dispose()
	before := bar.Buttons()

	st.CloseTab(keys[1])
	pass := bar.LastPass()
	if pass.Disposed != 1 || pass.Created != 0 || pass.Reused != 2 {
		t.Errorf("pass = %+v", pass)
	}
	if got := bar.Buttons(); got[0] != before[0] || got[1] != before[2] {
		t.Error("buttons not reused")
	}
}

func TestContainerPanes(t *testing.T) {
	st, keys, docs := setup(t, "a.txt")
	home := st.AddHomeTab()
	form := st.NewDocumentForm()
	c := NewDocumentContainer(st)
	defer c.Dispose()

	var kinds []PaneKind
	for _, p := range c.Panes() {
		kinds = append(kinds, p.Content.Peek().Kind)
	}
	if diff := cmp.Diff([]PaneKind{PaneText, PaneHome, PaneForm}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	// Closing the document leaves its tab pointing at nothing.
	pane, _ := c.Pane(keys[0])
	st.CloseDocument(docs[0])
	if got := pane.Content.Peek(); got.Kind != PaneMissing || got.Key != docs[0] {
		t.Errorf("content = %+v, want missing %s", got, docs[0])
	}
	if p, _ := c.Pane(keys[0]); p != pane {
		t.Error("closing a document rebuilt the pane")
	}

	st.SetActive(home)
	if a := c.Active(); a == nil || a.Tab != home {
		t.Errorf("Active() = %v, want home pane", a)
	}

	// Completing the form swaps the pane content in place.
	formTab := st.Tabs().ReferencingDocument(form)[0]
	formPane, _ := c.Pane(formTab)
	doc, _ := st.Documents().Get(form)
	f := doc.(*documents.NewDocumentForm)
	f.Name.Set("made")
	f.Directory.Set(t.TempDir())
	f.Submit()
	if got := formPane.Content.Peek().Kind; got != PaneText {
		t.Errorf("form pane = %s, want text", got)
	}
}

func TestContainerActiveToleratesStaleKey(t *testing.T) {
	st, keys, _ := setup(t, "a.txt")
	c := NewDocumentContainer(st)
	defer c.Dispose()

	st.Tabs().Remove(keys[0])
	st.SetActive(keys[0])
	if a := c.Active(); a != nil {
		t.Errorf("Active() = %v for a closed tab", a)
	}
	st.SetActive(0)
	if a := c.Active(); a != nil {
		t.Errorf("Active() = %v with no selection", a)
	}
}

func TestDisposeStopsUpdates(t *testing.T) {
	st, keys, _ := setup(t, "a.txt")
	bar := NewTabBar(st)
	b, _ := bar.Button(keys[0])
	bar.Dispose()

	entry, _ := st.Tabs().Get(keys[0])
	entry.Name.Set("after")
	if b.Label.Peek() == "after" {
		t.Error("disposed button still follows its tab")
	}
	if !b.IsDisposed() {
		t.Error("button not disposed")
	}
	if entry.Name.Subscribers() != 0 {
		t.Errorf("name has %d subscribers", entry.Name.Subscribers())
	}
}

func TestPaneKindString(t *testing.T) {
	if PaneMissing.String() != "missing" || PaneKind(0).String() != "unknown" {
		t.Error("unexpected PaneKind names")
	}
}
