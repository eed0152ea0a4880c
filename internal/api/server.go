package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deckforge/internal/repositories"
	"deckforge/internal/services"
)

// Server holds the HTTP surface. Handlers stay thin; every decision lives in
// the services.
type Server struct {
	generation    services.GenerationService
	presentations services.PresentationService
	validation    services.ValidationService
	credits       services.CreditService
	themes        services.ThemeService
	log           *zap.SugaredLogger
}

func NewServer(
	generation services.GenerationService,
	presentations services.PresentationService,
	validation services.ValidationService,
	credits services.CreditService,
	themes services.ThemeService,
	log *zap.SugaredLogger,
) *Server {
	return &Server{
		generation:    generation,
		presentations: presentations,
		validation:    validation,
		credits:       credits,
		themes:        themes,
		log:           log,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/presentations", s.handleGenerate)
		api.GET("/presentations/:id", s.handleGetPresentation)
		api.DELETE("/presentations/:id", s.handleDeletePresentation)
		api.GET("/presentations/:id/pending", s.handleListPending)
		api.POST("/presentations/:id/slides/:slideID/respond", s.handleRespond)
		api.PUT("/presentations/:id/auto-approve", s.handleAutoApprove)

		api.GET("/users/:id/credits", s.handleGetCredits)
		api.POST("/users/:id/credits", s.handleGrantCredits)

		api.GET("/themes", s.handleListThemes)
	}
	return r
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	presentation, err := s.generation.Generate(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPreflightRejected):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repositories.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			s.log.Errorw("generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, presentation)
}

func (s *Server) handleGetPresentation(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	presentation, err := s.presentations.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPresentationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "presentation not found"})
			return
		}
		s.log.Errorw("presentation lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, presentation)
}

func (s *Server) handleDeletePresentation(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := s.presentations.Delete(c.Request.Context(), id); err != nil {
		s.log.Errorw("presentation delete failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListPending(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	pending, err := s.validation.ListPending(c.Request.Context(), id)
	if err != nil {
		s.log.Errorw("pending scan failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pending lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

type respondRequest struct {
	Action string               `json:"action" binding:"required"`
	Edits  *services.SlideEdits `json:"edits,omitempty"`
}

func (s *Server) handleRespond(c *gin.Context) {
	sessionID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	slideID, ok := uintParam(c, "slideID")
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := s.validation.Respond(c.Request.Context(), sessionID, slideID, req.Action, req.Edits)
	if err != nil {
		if errors.Is(err, services.ErrNothingPending) {
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing pending for this slide"})
			return
		}
		s.log.Errorw("validation response failed", "session", sessionID, "slide", slideID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "response processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved", "action": req.Action})
}

type autoApproveRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleAutoApprove(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req autoApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.validation.SetAutoApprove(c.Request.Context(), id, req.Enabled); err != nil {
		s.log.Errorw("auto-approve update failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-approve update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"autoApprove": req.Enabled})
}

func (s *Server) handleGetCredits(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	balance, err := s.credits.Balance(c.Request.Context(), id)
	if err != nil {
		s.log.Errorw("balance lookup failed", "user", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type grantRequest struct {
	Amount int `json:"amount" binding:"required"`
}

func (s *Server) handleGrantCredits(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	balance, err := s.credits.Grant(c.Request.Context(), id, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (s *Server) handleListThemes(c *gin.Context) {
	themes, err := s.themes.List(c.Request.Context())
	if err != nil {
		s.log.Errorw("theme list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "theme list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"themes": themes})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
