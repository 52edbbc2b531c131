package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
	"github.com/rezakmal/insightify/internal/validator"
)

// ErrorResponse is the JSON error envelope for every handler failure
type ErrorResponse struct {
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c, h.logger).Info(msg,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
}

// handleServiceError maps service errors onto the HTTP error taxonomy:
// validation 400, missing entity 404, credential failure 401, gating 403,
// insight service trouble 502, everything else 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "validation failed",
			Detail:  validationErrs,
		})
		return
	}

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "insight service error",
			Detail:  gin.H{"status": upstream.Status, "detail": upstream.Detail},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNoAnswers),
		errors.Is(err, services.ErrNotLoggedIn),
		errors.Is(err, services.ErrInvalidEvent),
		errors.Is(err, services.ErrProfileNotGenerated):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})

	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case services.IsAuthError(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})

	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrMlTimeout),
		errors.Is(err, services.ErrMlUnreachable):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error()})

	default:
		utils.FromContext(c, h.logger).Error("Unhandled service error",
			"error", err,
			"path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}

// currentUser returns the authenticated user placed in the context by the
// auth middleware.
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// requireUser aborts with 401 when no authenticated user is present.
func (h *BaseHandler) requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := h.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return nil, false
	}
	return user, true
}
