package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Signup creates an account and returns a fresh token
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse "Validation failure or duplicate email"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	h.LogRequest(c, "Signing up user")

	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates a user and replaces any prior session
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse "Bad credentials"
// @Failure 404 {object} ErrorResponse "Unknown email"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "Logging in user")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout revokes the presented token and ends the session
func (h *AuthHandler) Logout(c *gin.Context) {
	h.LogRequest(c, "Logging out user")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	token := c.GetString("token")
	if err := h.service.Revoke(c.Request.Context(), token, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
