package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type TrackingHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	GetWithQuestions(c *gin.Context)
}

type trackingHandler struct {
	trackingRepo repository.TrackingRepository
	log          *logrus.Logger
}

func NewTrackingHandler(trackingRepo repository.TrackingRepository, log *logrus.Logger) TrackingHandler {
	return &trackingHandler{trackingRepo: trackingRepo, log: log}
}

type CreateTrackingRequest struct {
	Name       string          `json:"name" binding:"required"`
	WebhookURL *string         `json:"webhookUrl" binding:"omitempty,url"`
	Status     string          `json:"status" binding:"required"`
	Metadata   json.RawMessage `json:"metadata"`
}

// Create handles POST /trackings
func (h *trackingHandler) Create(c *gin.Context) {
	var req CreateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidTrackingStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tracking status"})
		return
	}

	tracking := &models.Tracking{
		Name:       req.Name,
		Status:     req.Status,
		WebhookURL: req.WebhookURL,
		Metadata:   req.Metadata,
	}
	if err := h.trackingRepo.Create(tracking); err != nil {
		h.log.Errorf("Failed to create tracking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tracking"})
		return
	}

	c.JSON(http.StatusCreated, tracking)
}

// List handles GET /trackings
func (h *trackingHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	trackings, total, err := h.trackingRepo.List(repository.TrackingListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.log.Errorf("Failed to list trackings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trackings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": trackings,
		"meta": paginationMeta(page, pageSize, total),
	})
}

// Get handles GET /trackings/:uuid
func (h *trackingHandler) Get(c *gin.Context) {
	tracking, err := h.trackingRepo.GetByUUID(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tracking not found"})
			return
		}
		h.log.Errorf("Failed to get tracking %s: %v", c.Param("uuid"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tracking"})
		return
	}
	c.JSON(http.StatusOK, tracking)
}

// GetWithQuestions handles GET /trackings/:uuid/with-questions
func (h *trackingHandler) GetWithQuestions(c *gin.Context) {
	tracking, err := h.trackingRepo.GetWithQuestions(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tracking not found"})
			return
		}
		h.log.Errorf("Failed to get tracking %s with questions: %v", c.Param("uuid"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tracking"})
		return
	}
	c.JSON(http.StatusOK, tracking)
}
