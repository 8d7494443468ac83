package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	playvalidator "github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/movieclubhq/movieclub-server/internal/comments"
	"github.com/movieclubhq/movieclub-server/internal/config"
	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/reactions"
	"github.com/movieclubhq/movieclub-server/internal/rotation"
	"github.com/movieclubhq/movieclub-server/internal/suggestions"
)

// callerHeader carries the authenticated user id, set by the auth proxy in
// front of this service. Identity management itself lives there, not here.
const (
	callerHeader     = "X-User-Id"
	callerNameHeader = "X-User-Name"
)

type serverDeps struct {
	engine      *rotation.Engine
	toggler     *reactions.Toggler
	comments    *comments.Service
	suggestions *suggestions.Service
}

type server struct {
	serverDeps
	limiter *rate.Limiter
}

func newServer(cfg *config.Config, deps serverDeps) *server {
	return &server{
		serverDeps: deps,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond*2)),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	mux.HandleFunc("POST /clubs/{clubID}/rotate", s.handleRotate)
	mux.HandleFunc("POST /clubs/{clubID}/movies/{movieID}/reactions", s.handleReact)
	mux.HandleFunc("POST /clubs/{clubID}/movies/{movieID}/collect", s.handleCollect)

	mux.HandleFunc("GET /clubs/{clubID}/movies/{movieID}/comments", s.handleListComments)
	mux.HandleFunc("POST /clubs/{clubID}/movies/{movieID}/comments", s.handleAddComment)
	mux.HandleFunc("DELETE /clubs/{clubID}/movies/{movieID}/comments/{commentID}", s.handleDeleteComment)
	mux.HandleFunc("POST /clubs/{clubID}/movies/{movieID}/comments/{commentID}/like", s.handleLikeComment)

	mux.HandleFunc("POST /clubs/{clubID}/suggestions", s.handleAddSuggestion)
	mux.HandleFunc("DELETE /clubs/{clubID}/suggestions/{suggestionID}", s.handleRemoveSuggestion)

	return s.rateLimit(mux)
}

func (s *server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleRotate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Rotate(r.Context(), r.PathValue("clubID"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleReact(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Like *bool `json:"like"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Like == nil {
		http.Error(w, `body must be {"like": true|false}`, http.StatusBadRequest)
		return
	}
	state, err := s.toggler.React(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"), caller, *req.Like)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleCollect(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	collected, err := s.toggler.Collect(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"collected": collected})
}

func (s *server) handleListComments(w http.ResponseWriter, r *http.Request) {
	tree, err := s.comments.ListTree(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if tree == nil {
		tree = []*models.CommentNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		Text     string `json:"text"`
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	c, err := s.comments.Add(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"),
		caller, r.Header.Get(callerNameHeader), req.Text, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	err := s.comments.Delete(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"),
		r.PathValue("commentID"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	liked, err := s.comments.ToggleLike(r.Context(), r.PathValue("clubID"), r.PathValue("movieID"),
		r.PathValue("commentID"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (s *server) handleAddSuggestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req struct {
		ImdbID string `json:"imdbId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	sug, err := s.suggestions.Add(r.Context(), r.PathValue("clubID"), caller,
		r.Header.Get(callerNameHeader), req.ImdbID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sug)
}

func (s *server) handleRemoveSuggestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	err := s.suggestions.Remove(r.Context(), r.PathValue("clubID"), r.PathValue("suggestionID"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := r.Header.Get(callerHeader)
	if caller == "" {
		http.Error(w, "missing "+callerHeader+" header", http.StatusUnauthorized)
		return "", false
	}
	return caller, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ve playvalidator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrRotationNotDue), errors.Is(err, models.ErrSuggestionExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrClubNotFound), errors.Is(err, models.ErrMovieNotFound),
		errors.Is(err, models.ErrCommentNotFound), errors.Is(err, models.ErrSuggestionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrTransient):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		slog.Error("Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
