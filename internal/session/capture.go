package session

import (
	"context"
	"errors"
	"slices"

	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

// Capture records the tabs of st. Tabs showing a form or a closed
// document are skipped. A path shown by several tabs is recorded once.
// Capture does not subscribe the caller to st.
func Capture(st *app.State) Record {
	rec := Record{Active: -1}
	st.Runtime().Untracked(func() {
		active, hasActive := st.Tabs().ActiveKey()
		for _, item := range st.Tabs().Entries() {
			isActive := hasActive && item.Key == active
			switch tab := item.Entry.Tab.(type) {
			case tabs.HomeTab:
				rec.Home = true
				if isActive {
					rec.HomeActive = true
				}
			case tabs.DocumentTab:
				doc, ok := st.Documents().Peek(tab.Document)
				if !ok {
					continue
				}
				path, ok := documents.PathOf(doc)
				if !ok {
					continue
				}
				i := slices.Index(rec.Paths, path)
				if i < 0 {
					i = len(rec.Paths)
					rec.Paths = append(rec.Paths, path)
				}
				if isActive {
					rec.Active = i
				}
			}
		}
	})
	return rec
}

// Restore reopens the documents of rec in st. Paths that can no longer be
// opened are skipped and reported together in the returned error; the
// rest are restored.
func Restore(ctx context.Context, st *app.State, rec Record) error {
	if rec.Home {
		if _, ok := st.Tabs().FindHome(); !ok {
			st.AddHomeTab()
		}
	}

	var errs []error
	var activeTab tabs.Key
	for i, path := range rec.Paths {
		k, err := st.OpenDocument(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if i == rec.Active {
			if refs := st.Tabs().ReferencingDocument(k); len(refs) > 0 {
				activeTab = refs[0]
			}
		}
	}

	switch {
	case activeTab != 0:
		st.SetActive(activeTab)
	case rec.HomeActive:
		st.ShowHome()
	}
	return errors.Join(errs...)
}
