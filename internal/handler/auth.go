package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/config"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/service"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Refresh(c *gin.Context)
	AdminChangePassword(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	cfg         *config.Config
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, cfg *config.Config, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, cfg: cfg, log: log}
}

type RegisterRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	DisciplineIDs []int64 `json:"disciplineIds"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ChangePasswordRequest struct {
	UserUUID    string `json:"userUuid" binding:"required,uuid"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.GetPrincipal(c)
	result, err := h.authService.Register(service.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		DisciplineIDs: req.DisciplineIDs,
	}, principal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminOnly):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.Errorf("Failed to register user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    h.cfg.JWT.AccessTTLSecs,
		"user":         result.User,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Errorf("Failed to login user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    h.cfg.JWT.AccessTTLSecs,
		"user":         result.User,
	})
}

func (h *authHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		h.log.Errorf("Failed to refresh tokens: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    h.cfg.JWT.AccessTTLSecs,
	})
}

func (h *authHandler) AdminChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.GetPrincipal(c)
	err := h.authService.AdminChangePassword(req.UserUUID, req.NewPassword, principal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminOnly):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.log.Errorf("Failed to change password: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Password changed successfully",
		"userUuid": req.UserUUID,
	})
}
