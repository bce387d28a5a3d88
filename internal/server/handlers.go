package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/tabdeck/internal/errors"
	"github.com/vango-dev/tabdeck/pkg/app"
	"github.com/vango-dev/tabdeck/pkg/documents"
	"github.com/vango-dev/tabdeck/pkg/tabs"
)

const maxBody = 1 << 20

type keyResponse struct {
	Key uint64 `json:"key"`
}

type openRequest struct {
	Path string `json:"path"`
}

type formRequest struct {
	Kind      *string `json:"kind,omitempty"`
	Name      *string `json:"name,omitempty"`
	Directory *string `json:"directory,omitempty"`
	Submit    bool    `json:"submit,omitempty"`
}

type formResponse struct {
	Key   uint64 `json:"key"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

type activeRequest struct {
	Tab uint64 `json:"tab"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps a coded error to an HTTP status.
func statusFor(te *errors.TabdeckError) int {
	switch te.Code {
	case "E201", "E204", "E303":
		return http.StatusBadRequest
	case "E202":
		return http.StatusConflict
	case "E003", "E304":
		return http.StatusNotFound
	case "E203":
		if stderrors.Is(te, fs.ErrNotExist) {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	te := errors.Classify(err, fallback)
	status := statusFor(te)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(te.FormatJSON()))
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("E303").WithDetail("Invalid request body: " + err.Error())
	}
	return nil
}

func parseKey(r *http.Request) (uint64, error) {
	k, err := strconv.ParseUint(chi.URLParam(r, "key"), 10, 64)
	if err != nil || k == 0 {
		return 0, errors.New("E303").WithDetail("Invalid key " + strconv.Quote(chi.URLParam(r, "key")))
	}
	return k, nil
}

func notFound(what string, k uint64) error {
	return errors.New("E304").WithDetail("No " + what + " with key " + strconv.FormatUint(k, 10))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.host.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	if req.Path == "" {
		s.writeError(w, r, errors.New("E303").WithDetail("path is required"), "E303")
		return
	}

	var k documents.Key
	err := s.host.Do(r.Context(), "open", func(ctx context.Context, st *app.State) error {
		var err error
		k, err = st.OpenDocument(ctx, req.Path)
		return err
	})
	if err != nil {
		s.writeError(w, r, err, "E203")
		return
	}
	writeJSON(w, http.StatusCreated, keyResponse{Key: uint64(k)})
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	var k documents.Key
	err := s.host.Do(r.Context(), "new", func(_ context.Context, st *app.State) error {
		k = st.NewDocumentForm()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	writeJSON(w, http.StatusCreated, keyResponse{Key: uint64(k)})
}

// handleForm applies the given fields to a form and submits it if asked.
// A failed submission is reported in the response body, not the status,
// since the form stays open with its error.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	var req formRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	var kind documents.NewKind
	if req.Kind != nil {
		if kind, err = documents.ParseNewKind(*req.Kind); err != nil {
			s.writeError(w, r, errors.New("E303").Wrap(err), "E303")
			return
		}
	}

	var resp formResponse
	err = s.host.Do(r.Context(), "form", func(_ context.Context, st *app.State) error {
		k := documents.Key(key)
		doc, ok := st.Documents().Peek(k)
		if !ok {
			return notFound("document", key)
		}
		form, ok := doc.(*documents.NewDocumentForm)
		if !ok {
			return errors.New("E303").WithDetail(k.String() + " is not a new-document form")
		}

		st.Runtime().Batch(func() {
			if req.Kind != nil {
				form.Type.Set(kind)
			}
			if req.Name != nil {
				form.Name.Set(*req.Name)
			}
			if req.Directory != nil {
				form.Directory.Set(*req.Directory)
			}
		})
		if req.Submit {
			form.Submit()
		}

		resp.Key = key
		doc, _ = st.Documents().Peek(k)
		resp.Kind = doc.Kind().String()
		if f, ok := doc.(*documents.NewDocumentForm); ok {
			if ferr := f.Err.Peek(); ferr != nil {
				resp.Error = ferr.Error()
			}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	err = s.host.Do(r.Context(), "close_document", func(_ context.Context, st *app.State) error {
		if !st.CloseDocument(documents.Key(key)) {
			return notFound("document", key)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	var k tabs.Key
	err := s.host.Do(r.Context(), "home", func(_ context.Context, st *app.State) error {
		k = st.ShowHome()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Key: uint64(k)})
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	err = s.host.Do(r.Context(), "close_tab", func(_ context.Context, st *app.State) error {
		if !st.CloseTab(tabs.Key(key)) {
			return notFound("tab", key)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseAll(w http.ResponseWriter, r *http.Request) {
	err := s.host.Do(r.Context(), "close_all", func(_ context.Context, st *app.State) error {
		st.CloseAll()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err, "E303")
		return
	}
	err := s.host.Do(r.Context(), "activate", func(_ context.Context, st *app.State) error {
		k := tabs.Key(req.Tab)
		if k != 0 {
			if _, ok := st.Tabs().Peek(k); !ok {
				return notFound("tab", req.Tab)
			}
		}
		st.SetActive(k)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err, "E301")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
