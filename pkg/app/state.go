// Package app is the application state of the workbench: the document and
// tab registries plus every action the UI can take on them.
//
// State is single-owner. Operations are meant to be called from outside
// effect bodies; they read registry signals with tracking.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

// HomeTitle is the name of the home tab.
const HomeTitle = "Home"

// State is the application state.
type State struct {
	rt   *reactive.Runtime
	docs *documents.Registry
	tabs *tabs.Registry

	opener  documents.Opener
	creator documents.Creator
	logger  *slog.Logger

	showHome  bool
	tabClosed *reactive.Trigger

	// scope owns the submit effects of pending forms, one child per form.
	scope *reactive.Scope
	forms map[documents.Key]*reactive.Scope
}

// Option configures a State.
type Option func(*State)

// WithOpener sets how documents are read. Defaults to the local filesystem.
func WithOpener(o documents.Opener) Option {
	return func(s *State) {
		s.opener = o
	}
}

// WithCreator sets how new documents are created.
func WithCreator(c documents.Creator) Option {
	return func(s *State) {
		s.creator = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShowHome opens and activates a home tab on creation.
func WithShowHome(show bool) Option {
	return func(s *State) {
		s.showHome = show
	}
}

// New creates the application state on rt.
func New(rt *reactive.Runtime, opts ...Option) *State {
	s := &State{
		rt:      rt,
		docs:    documents.NewRegistry(rt),
		tabs:    tabs.NewRegistry(rt),
		opener:  documents.FileOpener{},
		creator: documents.FileCreator{},
		logger:  rt.Logger(),
		scope:   rt.Root().Child(),
		forms:   make(map[documents.Key]*reactive.Scope),
	}
	s.tabClosed = reactive.NewTrigger(rt, reactive.Named("tabs.closed"))
	for _, opt := range opts {
		opt(s)
	}
	if s.showHome {
		s.AddHomeTab()
	}
	return s
}

// Runtime returns the runtime the state lives on.
func (s *State) Runtime() *reactive.Runtime { return s.rt }

// Documents returns the document registry.
func (s *State) Documents() *documents.Registry { return s.docs }

// Tabs returns the tab registry.
func (s *State) Tabs() *tabs.Registry { return s.tabs }

// ActiveTab returns the active selection signal.
func (s *State) ActiveTab() *reactive.Signal[tabs.Key] { return s.tabs.Active() }

// TabClosed fires after every closed tab.
func (s *State) TabClosed() *reactive.Trigger { return s.tabClosed }

// ShowHomeOnStartup reports whether the state was created with a home tab.
func (s *State) ShowHomeOnStartup() bool { return s.showHome }

// OpenDocument loads path and shows it in a new, active tab. If path is
// already open its tab is activated instead.
func (s *State) OpenDocument(ctx context.Context, path string) (documents.Key, error) {
	if k, ok := s.docs.FindPath(path); ok {
		s.rt.Batch(func() {
			if refs := s.tabs.ReferencingDocument(k); len(refs) > 0 {
				s.tabs.SetActive(refs[0])
				return
			}
			s.tabs.SetActive(s.tabs.Add(tabs.DocumentTab{Document: k}, documents.FileName(path)))
		})
		s.logger.Debug("document already open", "key", k, "path", path)
		return k, nil
	}

	doc, err := documents.Load(ctx, s.rt, s.opener, path)
	if err != nil {
		return 0, err
	}

	var k documents.Key
	s.rt.Batch(func() {
		k = s.docs.Insert(doc)
		s.tabs.SetActive(s.tabs.Add(tabs.DocumentTab{Document: k}, documents.FileName(path)))
	})
	s.logger.Info("document opened", "key", k, "path", path, "kind", doc.Kind())
	return k, nil
}

// NewDocumentForm opens a pending form in a new, active tab. When the
// form's Submitted trigger fires the file is created and loaded, and the
// document replaces the form under the same key.
func (s *State) NewDocumentForm() documents.Key {
	form := documents.NewForm(s.rt)

	var k documents.Key
	s.rt.Batch(func() {
		k = s.docs.Insert(form)
		s.tabs.SetActive(s.tabs.AddShared(tabs.DocumentTab{Document: k}, form.Title))
	})

	scope := s.scope.Child()
	s.forms[k] = scope
	scope.Run(func() {
		s.rt.OnUpdate(form.Submitted.Track, func() {
			s.submit(k, form)
		})
	})
	s.logger.Debug("new document form", "key", k)
	return k
}

func (s *State) submit(k documents.Key, form *documents.NewDocumentForm) {
	ctx := context.Background()
	req := form.Request()
	form.Err.Set(nil)

	path, err := s.creator.Create(ctx, req)
	if err != nil {
		s.logger.Warn("create document failed", "key", k, "name", req.Name, "error", err)
		form.Err.Set(err)
		return
	}
	doc, err := documents.Load(ctx, s.rt, s.opener, path)
	if err != nil {
		s.logger.Warn("load created document failed", "key", k, "path", path, "error", err)
		form.Err.Set(err)
		return
	}

	if err := s.ReplaceDocument(k, doc); err != nil {
		// The form was closed while its file was being created.
		s.logger.Warn("form closed before completion", "key", k, "path", path)
		return
	}
	form.Title.Set(documents.FileName(path))
	s.logger.Info("document created", "key", k, "path", path, "kind", req.Kind)
}

// ReplaceDocument swaps the document stored under k. Replacing a pending
// form stops its submit handler.
func (s *State) ReplaceDocument(k documents.Key, doc documents.Document) error {
	if err := s.docs.Replace(k, doc); err != nil {
		return err
	}
	if _, isForm := doc.(*documents.NewDocumentForm); !isForm {
		s.disposeForm(k)
	}
	return nil
}

func (s *State) disposeForm(k documents.Key) {
	if scope, ok := s.forms[k]; ok {
		delete(s.forms, k)
		scope.Dispose()
	}
}

// CloseTab closes the tab. If it was active, the preceding tab becomes
// active, else the following one, else none. A document no other tab
// shows is closed with it.
func (s *State) CloseTab(k tabs.Key) bool {
	entry, ok := s.tabs.Peek(k)
	if !ok {
		return false
	}
	active := s.tabs.Active().Peek()

	s.rt.Batch(func() {
		var next tabs.Key
		if active == k {
			next, _ = s.tabs.Neighbor(k)
		}
		s.tabs.Remove(k)
		if active == k {
			s.tabs.SetActive(next)
		}
		if dt, ok := entry.Tab.(tabs.DocumentTab); ok && len(s.tabs.ReferencingDocument(dt.Document)) == 0 {
			s.closeDocument(dt.Document)
		}
		s.tabClosed.Notify()
	})
	s.logger.Debug("tab closed", "key", k)
	return true
}

// CloseDocument closes the document but leaves the tabs showing it. They
// keep a stale key that views resolve to a missing document.
func (s *State) CloseDocument(k documents.Key) bool {
	return s.closeDocument(k)
}

func (s *State) closeDocument(k documents.Key) bool {
	doc, ok := s.docs.Close(k)
	if !ok {
		return false
	}
	s.disposeForm(k)
	s.logger.Info("document closed", "key", k, "kind", doc.Kind())
	return true
}

// CloseAll closes every tab and every document.
func (s *State) CloseAll() {
	s.rt.Batch(func() {
		n := s.tabs.Signal().Peek().Len()
		s.tabs.Clear()
		for _, k := range s.docs.Signal().Peek().Keys() {
			s.closeDocument(k)
		}
		if n > 0 {
			s.tabClosed.Notify()
		}
	})
}

// AddHomeTab opens a home tab and activates it.
func (s *State) AddHomeTab() tabs.Key {
	var k tabs.Key
	s.rt.Batch(func() {
		k = s.tabs.Add(tabs.HomeTab{}, HomeTitle)
		s.tabs.SetActive(k)
	})
	return k
}

// ShowHome activates the home tab, opening one if needed.
func (s *State) ShowHome() tabs.Key {
	if k, ok := s.tabs.FindHome(); ok {
		s.tabs.SetActive(k)
		return k
	}
	return s.AddHomeTab()
}

// SetActive selects k; the zero key clears the selection.
func (s *State) SetActive(k tabs.Key) {
	s.tabs.SetActive(k)
}

// ReloadPath re-reads an open text document and updates its content when
// the bytes changed. It reports whether the content was updated.
func (s *State) ReloadPath(ctx context.Context, path string) (bool, error) {
	k, ok := s.docs.FindPath(path)
	if !ok {
		return false, nil
	}
	doc, _ := s.docs.Peek(k)
	text, ok := doc.(*documents.TextDocument)
	if !ok {
		return false, nil
	}

	data, err := s.opener.Open(ctx, path)
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", path, err)
	}
	digest := documents.Digest(data)
	if digest == text.Digest {
		return false, nil
	}
	text.Digest = digest
	text.Content.Set(string(data))
	s.logger.Info("document reloaded", "key", k, "path", path)
	return true, nil
}

// OpenPaths returns the paths of the open text and image documents in
// opening order.
func (s *State) OpenPaths() []string {
	var paths []string
	for _, doc := range s.docs.Signal().Peek().All() {
		if p, ok := documents.PathOf(doc); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// Dispose stops every form handler.
func (s *State) Dispose() {
	s.scope.Dispose()
	clear(s.forms)
}
