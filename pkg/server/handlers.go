package server

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/labelsheet/pkg/buildinfo"
	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/pipeline"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type counterResponse struct {
	Next      int  `json:"next"`
	Persisted bool `json:"persisted"`
}

type previewResponse struct {
	First int            `json:"first"`
	Last  int            `json:"last"`
	Next  int            `json:"next"`
	Page  *document.Page `json:"page"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodePersistence, err, "load counter"))
		return
	}
	writeJSON(w, http.StatusOK, counterResponse{
		Next:      snap.Or(s.opts.Start),
		Persisted: snap.Exists,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.previewRunner(loggerFrom(r.Context(), s.logger)).Plan(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		First: plan.Range.First,
		Last:  plan.Range.Last(),
		Next:  plan.NextStart,
		Page:  plan.Page,
	})
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.runner(loggerFrom(r.Context(), s.logger)).Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Label-First", strconv.Itoa(result.Range.First))
	w.Header().Set("X-Label-Last", strconv.Itoa(result.Range.Last()))
	w.Header().Set("X-Label-Next", strconv.Itoa(result.NextStart))
	writeDocument(w, result.ContentType, result.Output, result.Document)
}

// options applies the request's query parameters to the base options.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeConfiguration, "start: %q is not an integer", v)
		}
		opts.StartOverride = &n
	}
	if v := q.Get("force"); v != "" {
		force, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeConfiguration, "force: %q is not a boolean", v)
		}
		opts.Force = force
	}
	return opts, nil
}
