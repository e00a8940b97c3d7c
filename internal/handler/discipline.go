package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/authz"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type DisciplineHandler interface {
	List(c *gin.Context)
}

type disciplineHandler struct {
	disciplineRepo repository.DisciplineRepository
	log            *logrus.Logger
}

func NewDisciplineHandler(disciplineRepo repository.DisciplineRepository, log *logrus.Logger) DisciplineHandler {
	return &disciplineHandler{disciplineRepo: disciplineRepo, log: log}
}

// List handles GET /disciplines
// ADMIN sees every discipline; everyone else only their membership set.
func (h *disciplineHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	page, pageSize := parsePagination(c)

	disciplines, total, err := h.disciplineRepo.List(repository.DisciplineListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		IDs:      authz.ScopeDisciplineIDs(principal),
	})
	if err != nil {
		h.log.Errorf("Failed to list disciplines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve disciplines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": disciplines,
		"meta": paginationMeta(page, pageSize, total),
	})
}
