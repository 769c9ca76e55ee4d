package handler

import (
	"errors"
	"go-rail-booking/internal/middleware"
	"go-rail-booking/internal/service"
	apperrors "go-rail-booking/pkg/app_errors"
	"go-rail-booking/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/auth")
	{
		router.POST("register", h.Register)
		router.POST("login", h.Login)
		router.GET("me", auth, h.Me)
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Register(c, req.Username, req.Email, req.Password)
	if err != nil {
		h.handleAuthError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	token, err := h.service.Login(c, req.Username, req.Password)
	if err != nil {
		h.handleAuthError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.service.GetUser(c, userID)
	if err != nil {
		h.handleAuthError(c, err, "Me")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		log.Warn("User already exists")
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already registered"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		log.Warn("Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	case errors.Is(err, apperrors.ErrInvalidToken):
		log.Warn("Invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
