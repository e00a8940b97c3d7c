package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type CatalogHandler interface {
	ListModules(c *gin.Context)
	ListSubjects(c *gin.Context)
}

type catalogHandler struct {
	catalogRepo repository.CatalogRepository
	log         *logrus.Logger
}

func NewCatalogHandler(catalogRepo repository.CatalogRepository, log *logrus.Logger) CatalogHandler {
	return &catalogHandler{catalogRepo: catalogRepo, log: log}
}

// ListModules handles GET /modules?externalDisciplineId=
func (h *catalogHandler) ListModules(c *gin.Context) {
	modules, err := h.catalogRepo.ListModules(c.Query("externalDisciplineId"))
	if err != nil {
		h.log.Errorf("Failed to list modules: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve modules"})
		return
	}
	c.JSON(http.StatusOK, modules)
}

// ListSubjects handles GET /subjects?externalModuleId=
func (h *catalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalogRepo.ListSubjects(c.Query("externalModuleId"))
	if err != nil {
		h.log.Errorf("Failed to list subjects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subjects"})
		return
	}
	c.JSON(http.StatusOK, subjects)
}
