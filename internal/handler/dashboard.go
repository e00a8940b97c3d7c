package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/authz"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type DashboardHandler interface {
	Stats(c *gin.Context)
}

type dashboardHandler struct {
	dashboardRepo repository.DashboardRepository
	log           *logrus.Logger
}

func NewDashboardHandler(dashboardRepo repository.DashboardRepository, log *logrus.Logger) DashboardHandler {
	return &dashboardHandler{dashboardRepo: dashboardRepo, log: log}
}

// Stats handles GET /dashboard/stats
func (h *dashboardHandler) Stats(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	scope := authz.ScopeDisciplineIDs(principal)
	if scope != nil && len(scope) == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "You have no discipline access"})
		return
	}

	stats, err := h.dashboardRepo.StatsByDiscipline(scope)
	if err != nil {
		h.log.Errorf("Failed to compute dashboard stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	var totalQuestions, totalApproved, totalPending int
	for _, s := range stats {
		totalQuestions += s.Total
		totalApproved += s.Approved
		totalPending += s.Pending
	}

	c.JSON(http.StatusOK, gin.H{
		"totalQuestions":  totalQuestions,
		"totalApproved":   totalApproved,
		"totalPending":    totalPending,
		"disciplineStats": stats,
		"generatedAt":     time.Now().UTC(),
	})
}
