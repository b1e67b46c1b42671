package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/siddarthal/AiHackathon/internal/backend"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/service"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name": "code assistant",
		"endpoints": []string{
			"GET /health", "GET /config",
			"POST /ask", "POST /chat", "POST /complete", "POST /reindex",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"index":  s.service.Status(),
	})
}

// handleConfig reports the active setup without secrets: key variable
// names, never their values.
func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"documents": s.cfg.Documents.Path,
		"embedder":  s.cfg.Embedder.Type,
		"backends": gin.H{
			"default": s.cfg.Backends.Default,
			"local":   gin.H{"url": s.cfg.Backends.Local.URL, "model": s.cfg.Backends.Local.Model},
			"openai":  gin.H{"model": s.cfg.Backends.OpenAI.Model, "api_key_env": s.cfg.Backends.OpenAI.APIKeyEnv},
			"gemini":  gin.H{"model": s.cfg.Backends.Gemini.Model, "api_key_env": s.cfg.Backends.Gemini.APIKeyEnv},
		},
		"index": s.service.Status(),
	})
}

type askRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	answer, err := s.service.AnswerQuery(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

type chatRequest struct {
	Messages    []domain.ChatMessage   `json:"messages" binding:"required"`
	Files       []domain.FileReference `json:"files"`
	Backend     string                 `json:"backend"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature *float64               `json:"temperature"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages are required"})
		return
	}
	out, err := s.service.Chat(c.Request.Context(), service.ChatInput{
		Messages:    req.Messages,
		Files:       req.Files,
		Backend:     req.Backend,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type completeRequest struct {
	Prefix      string   `json:"prefix" binding:"required"`
	Suffix      string   `json:"suffix"`
	Backend     string   `json:"backend"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (s *Server) handleComplete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prefix is required"})
		return
	}
	out, err := s.service.Complete(c.Request.Context(), service.CompleteInput{
		Prefix:      req.Prefix,
		Suffix:      req.Suffix,
		Backend:     req.Backend,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type reindexRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleReindex(c *gin.Context) {
	var req reindexRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}
	path := req.Path
	if path == "" {
		path = s.cfg.Documents.Path
	}
	stats, err := s.service.IndexDirectory(c.Request.Context(), path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// respondError maps service errors to HTTP statuses. Backend failures keep
// their upstream status and body in the detail so callers can see what the
// provider actually said.
func respondError(c *gin.Context, err error) {
	var reqErr *backend.RequestError
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "index is not ready yet, try again shortly or POST /reindex",
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmptyCorpus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "backend request failed",
			"upstream_status": reqErr.Status,
			"detail":          reqErr.Body,
		})
	default:
		log.Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
