package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the sighting search and catalog API.
type Server struct {
	search        SearchService
	sightings     SightingService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, sightings SightingService, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:    search,
		sightings: sightings,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		detailHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		detailHandler(domain.ErrInvalidDate, http.StatusBadRequest, CodeInvalidDate),
		detailHandler(domain.ErrInvalidSighting, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable),
		sentinelHandler(domain.ErrDecodeFailure, http.StatusBadGateway, CodeBackendError),
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sightings", func(r chi.Router) {
		r.Post("/", s.CreateSighting)
		r.Get("/", s.ListSightings)

		r.Route("/search", func(r chi.Router) {
			r.Get("/text", s.TextSearch)
			r.Get("/advanced", s.AdvancedSearch)
			r.Get("/nearby", s.NearbySearch)

			r.Get("/stats/object-types", s.ObjectTypeDistribution)
			r.Get("/stats/states", s.StateCounts)
			r.Get("/stats/reliability", s.ReliabilityStatistics)
			r.Get("/stats/reliability/mean", s.MeanReliability)
			r.Get("/stats/timeline", s.HourlyTimeline)

			r.Get("/weekly/top", s.WeeklyTop)
			r.Get("/weekly/ranking", s.WeeklyRanking)
		})

		r.Get("/{id}", s.GetSighting)
		r.Put("/{id}", s.UpdateSighting)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler answers with the sentinel text only, hiding wrapped internals.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailHandler answers with the full message; input errors carry only caller-supplied context.
func detailHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
