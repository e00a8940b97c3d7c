package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/authz"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type UserHandler interface {
	List(c *gin.Context)
	Deactivate(c *gin.Context)
	Activate(c *gin.Context)
}

type userHandler struct {
	userRepo repository.UserRepository
	log      *logrus.Logger
}

func NewUserHandler(userRepo repository.UserRepository, log *logrus.Logger) UserHandler {
	return &userHandler{userRepo: userRepo, log: log}
}

// List handles GET /users
// Query parameters: page, pageSize, search (name or email), role, isActive.
func (h *userHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if !authz.CanManageUsers(principal) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied, only ADMIN can list users"})
		return
	}

	page, pageSize := parsePagination(c)
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	}

	if role := c.Query("role"); role != "" {
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role filter"})
			return
		}
		filter.Role = role
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid isActive filter"})
			return
		}
		filter.IsActive = &active
	}

	users, total, err := h.userRepo.ListUsers(filter)
	if err != nil {
		h.log.Errorf("Failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": users,
		"meta": paginationMeta(page, pageSize, total),
	})
}

// Deactivate handles PATCH /users/:uuid/deactivate
func (h *userHandler) Deactivate(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetUUID := c.Param("uuid")

	if !authz.CanManageUsers(principal) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied, only ADMIN can deactivate users"})
		return
	}
	if !authz.CanDeactivate(principal, targetUUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot deactivate your own account"})
		return
	}

	user, err := h.userRepo.GetUserByUUID(targetUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Errorf("Failed to get user %s: %v", targetUUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is already inactive"})
		return
	}

	if err := h.userRepo.SetActive(targetUUID, false); err != nil {
		h.log.Errorf("Failed to deactivate user %s: %v", targetUUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User deactivated successfully",
		"userUuid": targetUUID,
		"isActive": false,
	})
}

// Activate handles PATCH /users/:uuid/activate
func (h *userHandler) Activate(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	targetUUID := c.Param("uuid")

	if !authz.CanManageUsers(principal) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied, only ADMIN can activate users"})
		return
	}

	user, err := h.userRepo.GetUserByUUID(targetUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Errorf("Failed to get user %s: %v", targetUUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	if user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is already active"})
		return
	}

	if err := h.userRepo.SetActive(targetUUID, true); err != nil {
		h.log.Errorf("Failed to activate user %s: %v", targetUUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User activated successfully",
		"userUuid": targetUUID,
		"isActive": true,
	})
}
