package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leafscan/internal/service"
)

const (
	detailDuplicateEmail     = "User with this email already exists"
	detailInvalidCredentials = "Invalid credentials"
	detailInternal           = "internal server error"
)

// AuthHandler expone signup, login y me.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, auth *service.AuthService) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r credentialsRequest) login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), req.login(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"detail": detailDuplicateEmail})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid email"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid password"})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Login maneja POST /auth/login. Acepta el form OAuth2 (username, password) o JSON.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid login request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
			return
		}
	} else {
		req.Username = c.PostForm("username")
		req.Password = c.PostForm("password")
	}

	ctx := service.WithClientIP(c.Request.Context(), c.ClientIP())
	resp, err := h.auth.Login(ctx, req.login(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"detail": detailInvalidCredentials})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many login attempts"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			abortUnauthenticated(c)
			return
		}
		h.logger.Error("current user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailInternal})
		return
	}
	c.JSON(http.StatusOK, user)
}
