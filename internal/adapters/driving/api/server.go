// Package api provides the HTTP API adapter for Lectern. It exposes
// the chat loop and course analytics over JSON endpoints so a web
// frontend can drive the system.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/logger"
)

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("api: chat service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("api: retrieval service is required")

// Server serves the Lectern HTTP API.
type Server struct {
	chat      driving.ChatService
	retrieval driving.RetrievalService
	router    chi.Router
}

// NewServer creates a new API server. Both services are required.
func NewServer(chat driving.ChatService, retrieval driving.RetrievalService) (*Server, error) {
	if chat == nil {
		return nil, ErrMissingChatService
	}
	if retrieval == nil {
		return nil, ErrMissingRetrievalService
	}

	s := &Server{
		chat:      chat,
		retrieval: retrieval,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/api/query", s.handleQuery)
	r.Get("/api/courses", s.handleCourses)
	r.Get("/api/courses/{title}/outline", s.handleOutline)

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler for the API routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on the specified address until the context is
// cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// queryRequest is the POST /api/query request body.
type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// queryResponse is the POST /api/query response body.
type queryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

// courseStats is the GET /api/courses response body.
type courseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// errorResponse is the body for all error statuses.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.chat.Answer(r.Context(), req.Query, req.SessionID)
	if err != nil {
		var backendErr *domain.BackendError
		switch {
		case errors.As(err, &backendErr):
			// Surface the provider's message, never the credentials.
			writeError(w, http.StatusBadGateway,
				fmt.Sprintf("call to LLM failed. Message is %q", backendErr.Message))
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Warn("query failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer.Text,
		Sources:   sources,
		SessionID: answer.SessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.retrieval.Analytics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	titles := analytics.CourseTitles
	if titles == nil {
		titles = []string{}
	}

	writeJSON(w, http.StatusOK, courseStats{
		TotalCourses: analytics.TotalCourses,
		CourseTitles: titles,
	})
}

// outlineResponse is the GET /api/courses/{title}/outline response body.
type outlineResponse struct {
	Title      string           `json:"title"`
	Link       string           `json:"link,omitempty"`
	Instructor string           `json:"instructor,omitempty"`
	Lessons    []outlineLessons `json:"lessons"`
}

type outlineLessons struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	partial := chi.URLParam(r, "title")

	title, err := s.retrieval.ResolveCourseTitle(r.Context(), partial)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if title == "" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no course found matching %q", partial))
		return
	}

	course, err := s.retrieval.Outline(r.Context(), title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no course found matching %q", partial))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := outlineResponse{
		Title:      course.Title,
		Link:       course.Link,
		Instructor: course.Instructor,
		Lessons:    make([]outlineLessons, len(course.Lessons)),
	}
	for i, lesson := range course.Lessons {
		resp.Lessons[i] = outlineLessons{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
