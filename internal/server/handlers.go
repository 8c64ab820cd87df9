package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kiji/internal/embedding"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/research"
)

const maxRequestBody = 1 << 20

// errNoResults is the neutral message shown for failures inside the research pipeline.
const errNoResults = "no results"

const errReloadFailed = "reload failed"

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var query models.ResearchQuery
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("research request",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("query", query.Query),
		zap.Int("results", query.Results),
		zap.Int("depth", query.Depth),
	)
	report, err := s.engine.Research(r.Context(), &query)
	if err != nil {
		status, message := researchError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("research failed", zap.String("query", query.Query), zap.Error(err))
		}
		s.respondError(w, status, message)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// researchError maps a research failure to a status code and a user-facing message.
// Only caller mistakes are described; pipeline failures get the neutral message.
func researchError(err error) (int, string) {
	switch {
	case errors.Is(err, research.ErrEmptyQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, embedding.ErrEncoding):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, research.ErrNoCorpus),
		errors.Is(err, embedding.ErrModelLoad),
		errors.Is(err, embedding.ErrProvider):
		return http.StatusServiceUnavailable, errNoResults
	default:
		return http.StatusInternalServerError, errNoResults
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"hotspots": s.engine.Hotspots()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		s.respondError(w, http.StatusNotImplemented, "reload not enabled")
		return
	}
	s.logger.Debug("corpus reload request")
	if err := s.reloader.Reload(r.Context()); err != nil {
		s.logger.Error("corpus reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, errReloadFailed)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "total_articles": s.engine.Stats().Total})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "articles": s.engine.Stats().Total})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
