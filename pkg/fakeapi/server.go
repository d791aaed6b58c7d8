// Package fakeapi serves an in-memory imitation of the Replicate predictions
// API. Each prediction walks through a status script, advancing one step per
// status request.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BasePath is where the API routes are mounted
const BasePath = "/v1"

// Step is one status report of a scripted prediction
type Step struct {
	Status types.Status
	Output interface{}
	Error  interface{}
}

// DefaultScript is used when no script is configured
var DefaultScript = []Step{
	{Status: types.StatusStarting},
	{Status: types.StatusProcessing, Output: []interface{}{"partial"}},
	{Status: types.StatusSucceeded, Output: []interface{}{"partial", "done"}},
}

type entry struct {
	prediction types.Prediction
	step       int
	polls      []time.Time
}

// Server is a fake Replicate API
type Server struct {
	mu          sync.Mutex
	token       string
	models      map[string][]types.ModelVersion
	script      []Step
	predictions map[string]*entry
}

// Option configures a Server
type Option func(*Server)

// WithToken rejects requests that do not carry "Authorization: Token <token>"
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithModel publishes a model with the given version ids, newest first
func WithModel(path string, versionIDs ...string) Option {
	return func(s *Server) {
		versions := make([]types.ModelVersion, len(versionIDs))
		for i, id := range versionIDs {
			versions[i] = types.ModelVersion{ID: id, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
		}
		s.models[path] = versions
	}
}

// WithScript sets the status sequence every new prediction goes through
func WithScript(steps ...Step) Option {
	return func(s *Server) { s.script = steps }
}

// New creates a fake API server
func New(opts ...Option) *Server {
	s := &Server{
		models:      make(map[string][]types.ModelVersion),
		script:      DefaultScript,
		predictions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the API under BasePath and
// prometheus metrics at /metrics
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	r.Route(BasePath, func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/models/{owner}/{name}/versions", s.listVersions)
		r.Post("/predictions", s.createPrediction)
		r.Get("/predictions/{id}", s.getPrediction)
		r.Post("/predictions/{id}/cancel", s.cancelPrediction)
	})
	return r
}

// PollTimes returns when each status request for a prediction arrived
func (s *Server) PollTimes(id string) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.predictions[id]
	if !ok {
		return nil
	}
	return append([]time.Time(nil), e.polls...)
}

// PredictionIDs returns the ids of every prediction created so far
func (s *Server) PredictionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.predictions))
	for id := range s.predictions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Token "+s.token {
			writeProblem(w, http.StatusUnauthorized, "Unauthenticated", "You did not pass a valid authentication token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")

	s.mu.Lock()
	versions, ok := s.models[path]
	s.mu.Unlock()
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not found", "The requested resource could not be found.")
		return
	}
	writeJSON(w, http.StatusOK, types.VersionList{Results: versions})
}

func (s *Server) createPrediction(w http.ResponseWriter, r *http.Request) {
	var req types.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasVersion(req.Version) {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid version", "The specified version does not exist (or perhaps you don't have permission to use it?)")
		return
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	p := types.Prediction{
		ID:        id,
		Version:   req.Version,
		Status:    types.StatusStarting,
		Input:     req.Input,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	p.URLs.Get = BasePath + "/predictions/" + id
	p.URLs.Cancel = BasePath + "/predictions/" + id + "/cancel"

	s.predictions[id] = &entry{prediction: p}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) hasVersion(id string) bool {
	for _, versions := range s.models {
		for _, v := range versions {
			if v.ID == id {
				return true
			}
		}
	}
	return false
}

func (s *Server) getPrediction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.predictions[chi.URLParam(r, "id")]
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not found", "The requested resource could not be found.")
		return
	}
	e.polls = append(e.polls, time.Now())

	if e.prediction.Status.InProgress() && len(s.script) > 0 {
		idx := e.step
		if idx >= len(s.script) {
			idx = len(s.script) - 1
		}
		step := s.script[idx]
		e.prediction.Status = step.Status
		e.prediction.Output = step.Output
		e.prediction.Error = step.Error
		e.step++
		if step.Status.Terminal() {
			done := time.Now().UTC().Format(time.RFC3339Nano)
			e.prediction.CompletedAt = &done
		}
	}
	writeJSON(w, http.StatusOK, e.prediction)
}

func (s *Server) cancelPrediction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.predictions[chi.URLParam(r, "id")]
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not found", "The requested resource could not be found.")
		return
	}
	if e.prediction.Status.InProgress() {
		e.prediction.Status = types.StatusCanceled
		done := time.Now().UTC().Format(time.RFC3339Nano)
		e.prediction.CompletedAt = &done
	}
	writeJSON(w, http.StatusOK, e.prediction)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, map[string]interface{}{
		"title":  title,
		"detail": detail,
		"status": status,
	})
}
