package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/service/session"
)

// AuthHandler adapts the session guard to HTTP.
type AuthHandler struct {
	guard  *session.Guard
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(guard *session.Guard, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{guard: guard, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	if err := h.guard.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		respondError(c, err)
		return
	}

	sess, _ := h.guard.Current()
	c.JSON(http.StatusOK, gin.H{
		"name":   sess.Name,
		"email":  sess.Email,
		"expiry": sess.Expiry,
	})
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a new account awaiting activation.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email and password are required"})
		return
	}

	if err := h.guard.Signup(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "account created, check your email to activate it"})
}

// Logout clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.guard.Logout()
	c.Status(http.StatusNoContent)
}

// Me reports the current session identity and state.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := h.guard.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": string(h.guard.State())})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":  string(session.StateAuthenticated),
		"name":   sess.Name,
		"email":  sess.Email,
		"expiry": sess.Expiry,
	})
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Activate confirms a new account via the emailed token.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token is required"})
		return
	}

	if err := h.guard.Activate(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account activated"})
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset asks the backend to email a reset token.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	if err := h.guard.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset email sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

// ResetPassword applies a new password given a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password and token are required"})
		return
	}

	if err := h.guard.ResetPassword(c.Request.Context(), req.Password, req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// ResendActivation re-sends the activation email.
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	if err := h.guard.ResendActivation(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activation email sent"})
}

type profileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateProfile changes the display name and/or password.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if req.Name == "" && req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "nothing to update"})
		return
	}

	if err := h.guard.UpdateProfile(c.Request.Context(), req.Name, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}
