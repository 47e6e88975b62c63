package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/internal/config"
	"github.com/hupe1980/skycat/observability"
)

// server answers catalog queries over HTTP. Query parameters missing from a
// request fall back to the configured defaults.
type server struct {
	cat *skycat.Catalog
	cfg config.Config
}

func newServer(cat *skycat.Catalog, cfg config.Config, collector *observability.PrometheusCollector) http.Handler {
	s := &server{cat: cat, cfg: cfg}

	mux := http.NewServeMux()
	mux.Handle("GET /v1/lookup", collector.Middleware("lookup", http.HandlerFunc(s.lookup)))
	mux.Handle("GET /v1/nearest", collector.Middleware("nearest", http.HandlerFunc(s.nearest)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}
	return mux
}

type errorJSON struct {
	Error string `json:"error"`
}

func (s *server) lookup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing id"))
		return
	}
	star, err := s.cat.LookupByID(r.Context(), skycat.CatalogID(id))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeResponse(w, http.StatusOK, toStarJSON(star))
}

func (s *server) nearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ra, err := strconv.ParseFloat(q.Get("ra"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid ra"))
		return
	}
	dec, err := strconv.ParseFloat(q.Get("dec"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid dec"))
		return
	}

	cfg := s.cfg
	if v := q.Get("k"); v != "" {
		if cfg.MaxResults, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid k"))
			return
		}
	}
	if v := q.Get("radius"); v != "" {
		if cfg.ExpandRadius, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid radius"))
			return
		}
	}
	if v := q.Get("wrap"); v != "" {
		if cfg.WrapRA, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid wrap"))
			return
		}
	}
	if v := q.Get("max_sep"); v != "" {
		if cfg.MaxSeparation, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid max_sep"))
			return
		}
	}

	res, err := s.cat.Nearest(r.Context(), ra, dec, cfg.MaxResults, cfg.ExpandRadius, queryOptions(cfg)...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeResponse(w, http.StatusOK, toNeighborsJSON(res))
}

// statusFor maps catalog errors to HTTP status codes. Not-found is checked
// first because it also matches ErrOutOfRange.
func statusFor(err error) int {
	switch {
	case errors.Is(err, skycat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, skycat.ErrInvalidIdentifier),
		errors.Is(err, skycat.ErrInvalidArgument),
		errors.Is(err, skycat.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, skycat.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = writeJSON(w, v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeResponse(w, code, errorJSON{Error: err.Error()})
}
