// Package server exposes the assistant over HTTP: a health probe and a chat
// endpoint that forwards user messages into the dispatch graph.
package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cs-support-assistant/server/internal/agent/graph"
	"github.com/cs-support-assistant/server/internal/agent/model"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

const defaultThreadID = "default"

// DefaultGreeting is returned when a chat request carries no usable message;
// the graph is not invoked in that case.
const DefaultGreeting = "Привет! Чем могу помочь?"

type ChatRequest struct {
	Messages []string `json:"messages"`
	ThreadID string   `json:"thread_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Server wires the chat runner behind an echo instance.
type Server struct {
	echo   *echo.Echo
	runner graph.Runner
}

func New(runner graph.Runner) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, runner: runner}

	e.GET("/", s.handleRoot)
	e.POST("/chat", s.handleChat)

	return s
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Customer Support AI Assistant API",
		"status":  "running",
	})
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = defaultThreadID
	}

	requestID := uuid.NewString()
	log := logx.Info().Str("request_id", requestID).Str("thread_id", threadID)

	query := lastNonEmpty(req.Messages)
	if query == "" {
		// Nothing to process; answer with the greeting and skip the graph.
		log.Msg("Empty chat request - returning default greeting")
		return c.JSON(http.StatusOK, ChatResponse{Response: DefaultGreeting, ThreadID: threadID})
	}

	log.Int("message_count", len(req.Messages)).Msg("Chat request received")

	response, err := s.runner.Invoke(c.Request().Context(), model.QueryInput{
		ConversationID: threadID,
		Query:          query,
	})
	if err != nil {
		logx.Error().Err(err).Str("request_id", requestID).Str("thread_id", threadID).Msg("Graph invocation failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error processing request"})
	}

	return c.JSON(http.StatusOK, ChatResponse{Response: response, ThreadID: threadID})
}

func lastNonEmpty(messages []string) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if m := strings.TrimSpace(messages[i]); m != "" {
			return m
		}
	}
	return ""
}
