package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"reelmatch/internal/logging"
	"reelmatch/internal/recommend"
	"reelmatch/internal/services"
)

const (
	defaultTitlesLimit = 20
	maxTitlesLimit     = 200
	maxK               = 100
)

// PosterResponse answers /api/poster.
type PosterResponse struct {
	Title     string `json:"title"`
	PosterURL string `json:"poster_url"`
}

// ForgetPosterResponse answers DELETE /api/poster.
type ForgetPosterResponse struct {
	Title   string `json:"title"`
	Removed bool   `json:"removed"`
}

// TitlesResponse answers /api/titles.
type TitlesResponse struct {
	Query  string   `json:"query"`
	Titles []string `json:"titles"`
}

// HealthResponse answers /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Titles int    `json:"titles"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	k, err := parseIntParam(q.Get("k"), 0, maxK)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid k: %v", err))
		return
	}
	posters := true
	if raw := strings.TrimSpace(q.Get("posters")); raw != "" {
		posters, err = strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid posters flag")
			return
		}
	}

	ctx := services.WithOperation(r.Context(), "api_recommend")
	result, err := s.svc.Execute(ctx, recommend.Request{Query: q.Get("title"), K: k, SkipPosters: !posters})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	title, url, err := s.svc.Poster(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PosterResponse{Title: title, PosterURL: url})
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, err := parseIntParam(q.Get("limit"), defaultTitlesLimit, maxTitlesLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %v", err))
		return
	}
	titles := s.svc.Index().Search(query, limit)
	if titles == nil {
		titles = []string{}
	}
	s.writeJSON(w, http.StatusOK, TitlesResponse{Query: query, Titles: titles})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Titles: s.svc.Index().Len()})
}

// parseIntParam parses an optional positive integer. Blank yields fallback;
// values above max are clamped.
func parseIntParam(raw string, fallback, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	if n > max {
		n = max
	}
	return n, nil
}

func (s *Server) handleForgetPoster(w http.ResponseWriter, r *http.Request) {
	title, removed, err := s.svc.ForgetPoster(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ForgetPosterResponse{Title: title, Removed: removed})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.StatusCode(err)
	message := err.Error()
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		message = "please enter a movie name"
	case errors.Is(err, services.ErrNotFound):
		message = "movie not found"
	case status >= http.StatusInternalServerError:
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_internal_error",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog artifacts and poster store"),
		)
		message = "internal error"
	}
	s.writeError(w, status, message)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
