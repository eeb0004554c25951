package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
	"github.com/fairyhunter13/jobfit/internal/usecase"
)

// ReadinessCheck probes one dependency for /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg    config.Config
	Fit    usecase.FitService
	Ingest usecase.IngestService
	Checks []ReadinessCheck
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, fit usecase.FitService, ingest usecase.IngestService, checks ...ReadinessCheck) *Server {
	return &Server{Cfg: cfg, Fit: fit, Ingest: ingest, Checks: checks}
}

// batchRequest carries raw postings from one source.
type batchRequest struct {
	Source string `json:"source" validate:"omitempty,max=64"`
	Jobs   []any  `json:"jobs" validate:"required,min=1"`
}

// RankResponse lists ranked jobs, best first.
type RankResponse struct {
	Results []domain.RankedJob `json:"results"`
	Count   int                `json:"count"`
}

func (s *Server) maxBody() int64 {
	if s.Cfg.MaxBodyMB <= 0 {
		return 5 << 20
	}
	return s.Cfg.MaxBodyMB << 20
}

func (s *Server) checkBatch(n int) error {
	if s.Cfg.MaxBatchSize > 0 && n > s.Cfg.MaxBatchSize {
		return fmt.Errorf("%w: batch of %d jobs exceeds limit %d", domain.ErrInvalidArgument, n, s.Cfg.MaxBatchSize)
	}
	return nil
}

// jsonHandler applies Accept negotiation shared by every API route.
func jsonHandler(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "not acceptable", Details: map[string]string{"accept": r.Header.Get("Accept")},
			}})
			return
		}
		fn(w, r)
	}
}

// ScoreHandler scores one job against a résumé and profile.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return jsonHandler(func(w http.ResponseWriter, r *http.Request) {
		var req domain.ScoreRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		res, err := s.Fit.Score(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

// RankHandler scores many jobs against one candidate and sorts them.
func (s *Server) RankHandler() http.HandlerFunc {
	return jsonHandler(func(w http.ResponseWriter, r *http.Request) {
		var req domain.RankRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if err := s.checkBatch(len(req.Jobs)); err != nil {
			writeError(w, r, err, map[string]int{"max_batch_size": s.Cfg.MaxBatchSize})
			return
		}
		ranked, err := s.Fit.Rank(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, RankResponse{Results: ranked, Count: len(ranked)})
	})
}

// NormalizeHandler maps raw postings to canonical jobs without storing them.
func (s *Server) NormalizeHandler() http.HandlerFunc {
	return jsonHandler(func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if err := s.checkBatch(len(req.Jobs)); err != nil {
			writeError(w, r, err, map[string]int{"max_batch_size": s.Cfg.MaxBatchSize})
			return
		}
		writeJSON(w, http.StatusOK, s.Ingest.Normalize(r.Context(), req.Source, req.Jobs))
	})
}

// IngestHandler normalizes, dedups and upserts raw postings. Per-record
// failures are part of the 200 report.
func (s *Server) IngestHandler() http.HandlerFunc {
	return jsonHandler(func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if details, err := decodeJSON(w, r, s.maxBody(), &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		if err := s.checkBatch(len(req.Jobs)); err != nil {
			writeError(w, r, err, map[string]int{"max_batch_size": s.Cfg.MaxBatchSize})
			return
		}
		report, err := s.Ingest.Ingest(r.Context(), req.Source, req.Jobs)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes every configured dependency.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		st := http.StatusOK
		for _, c := range s.Checks {
			if c.Check == nil {
				continue
			}
			if err := c.Check(ctx); err != nil {
				checks = append(checks, check{Name: c.Name, OK: false, Details: err.Error()})
				st = http.StatusServiceUnavailable
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
