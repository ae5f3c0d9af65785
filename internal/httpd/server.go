// Package httpd implements the HTTP measurement adapter.
//
// The adapter exposes the layout store to out-of-process observers. An
// observer embedded in the hosting renderer pushes measurements as they
// happen (view resizes, element remeasurements) and reads derived offsets
// back; dashboards scrape /metrics.
//
// # Endpoints
//
//	POST   /v1/view                 set the view width
//	PUT    /v1/line                 set the line width served to the store
//	POST   /v1/entities             register an entity, returns its id
//	PUT    /v1/entities/{id}/width  report an entity's wrapper width
//	DELETE /v1/entities/{id}        stop tracking an entity
//	GET    /v1/layout               full state snapshot
//	GET    /v1/entities/{id}        one entity's state
//	GET    /healthz                 liveness probe
//	GET    /metrics                 Prometheus metrics
//
// # Concurrency
//
// The store is single-threaded by contract; the adapter owns its
// serialization and guards every store call with one mutex. The line width
// is held by the adapter and read live by the store at each recomputation,
// so a PUT /v1/line between two recomputations is picked up without any
// store notification.
package httpd

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"widealign/internal/config"
	"widealign/pkg/errors"
	"widealign/pkg/layout"
)

// Server wires the layout store to a chi router.
type Server struct {
	logger  *log.Logger
	router  chi.Router
	metrics *metricsHooks

	mu        sync.Mutex // serializes store access and lineWidth
	store     *layout.Store
	lineWidth float64
}

// NewServer creates a server with a fresh store. The initial line width
// comes from configuration and can be replaced at runtime via PUT /v1/line.
func NewServer(cfg config.Serve, logger *log.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	s := &Server{
		logger:    logger,
		metrics:   newMetricsHooks(registry),
		lineWidth: cfg.LineWidth,
	}
	// The store reads the line width live at each recomputation. Store
	// operations only run under s.mu, so the read needs no extra lock.
	s.store = layout.New(
		func() (float64, error) { return s.lineWidth, nil },
		layout.WithHooks(s.metrics),
	)

	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/view", s.handleSetView)
		r.Put("/line", s.handleSetLine)
		r.Post("/entities", s.handleCreateEntity)
		r.Put("/entities/{id}/width", s.handleSetWidth)
		r.Delete("/entities/{id}", s.handleRemoveEntity)
		r.Get("/layout", s.handleGetLayout)
		r.Get("/entities/{id}", s.handleGetEntity)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// widthRequest is the body for every width-bearing endpoint.
type widthRequest struct {
	Width float64 `json:"width"`
}

// entityResponse reports one entity's state after a mutation or read.
type entityResponse struct {
	ID           layout.EntityID `json:"id"`
	WrapperWidth float64         `json:"wrapper_width"`
	LeftGap      float64         `json:"left_gap"`
	LeftGapKnown bool            `json:"left_gap_known"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWidth(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	err := s.store.SetViewWidth(req.Width)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLine(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWidth(w, r)
	if !ok {
		return
	}
	if req.Width <= 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "line width must be positive, got %g", req.Width))
		return
	}

	// The new value takes effect at the next recomputation; the store
	// deliberately never caches it.
	s.mu.Lock()
	s.lineWidth = req.Width
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWidth(w, r)
	if !ok {
		return
	}
	id := layout.EntityID(uuid.NewString())

	s.mu.Lock()
	err := s.store.SetWrapperWidth(id, req.Width)
	resp, respErr := s.entityState(id)
	s.metrics.setTracked(len(s.store.Entities()))
	s.mu.Unlock()

	// A missing view width leaves the entity registered with an unknown
	// gap; that is a usable creation, not a failure.
	if err != nil && !errors.Is(err, errors.ErrCodeMissingDependency) {
		s.writeError(w, err)
		return
	}
	if respErr != nil {
		s.writeError(w, respErr)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSetWidth(w http.ResponseWriter, r *http.Request) {
	id := layout.EntityID(chi.URLParam(r, "id"))
	req, ok := decodeWidth(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, known := s.knownEntity(id)
	if !known {
		s.mu.Unlock()
		s.writeError(w, errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id))
		return
	}
	err := s.store.SetWrapperWidth(id, req.Width)
	resp, respErr := s.entityState(id)
	s.mu.Unlock()

	if err != nil {
		s.writeError(w, err)
		return
	}
	if respErr != nil {
		s.writeError(w, respErr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveEntity(w http.ResponseWriter, r *http.Request) {
	id := layout.EntityID(chi.URLParam(r, "id"))

	s.mu.Lock()
	err := s.store.RemoveEntity(id)
	s.metrics.setTracked(len(s.store.Entities()))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.store.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := layout.EntityID(chi.URLParam(r, "id"))

	s.mu.Lock()
	resp, err := s.entityState(id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// knownEntity reports whether id is tracked. Callers hold s.mu.
func (s *Server) knownEntity(id layout.EntityID) (float64, bool) {
	width, err := s.store.WrapperWidth(id)
	return width, err == nil
}

// entityState assembles an entityResponse. Callers hold s.mu.
func (s *Server) entityState(id layout.EntityID) (entityResponse, error) {
	width, err := s.store.WrapperWidth(id)
	if err != nil {
		return entityResponse{}, err
	}
	resp := entityResponse{ID: id, WrapperWidth: width}
	if gap, err := s.store.LeftGap(id); err == nil {
		resp.LeftGap = gap
		resp.LeftGapKnown = true
	}
	return resp, nil
}

// decodeWidth parses a widthRequest body, writing a 400 on failure.
func decodeWidth(w http.ResponseWriter, r *http.Request) (widthRequest, bool) {
	var req widthRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    string(errors.ErrCodeInvalidInput),
			Message: "malformed body: " + err.Error(),
		})
		return widthRequest{}, false
	}
	return req, true
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps store error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeUnknownEntity:
		status = http.StatusNotFound
	case errors.ErrCodeMissingDependency:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests logs method, path, status, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
