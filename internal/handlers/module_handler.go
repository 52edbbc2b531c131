package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
	"github.com/rezakmal/insightify/internal/validator"
)

type ModuleHandler struct {
	BaseHandler
	courses  services.CourseService
	progress services.ProgressService
}

func NewModuleHandler(courses services.CourseService, progress services.ProgressService, logger utils.Logger) *ModuleHandler {
	return &ModuleHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
		progress:    progress,
	}
}

// Create registers a standalone content module
func (h *ModuleHandler) Create(c *gin.Context) {
	h.LogRequest(c, "Creating module")

	var req services.ModuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	module, err := h.courses.CreateModule(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

// Get returns a module's content. With a courseId query parameter the
// course's sequential gating applies, which requires authentication.
// @Summary Get module
// @Tags modules
// @Produce json
// @Param courseId query string false "Apply this course's gating"
// @Success 200 {object} models.Module
// @Failure 401 {object} ErrorResponse "Gated access without a token"
// @Failure 403 {object} ErrorResponse "Previous module not passed, or not enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	moduleID := c.Param("id")
	courseID := c.Query("courseId")

	if courseID != "" {
		user, ok := h.currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required for gated access"})
			return
		}
		if err := h.progress.CheckAccess(c.Request.Context(), user.ID, moduleID, courseID); err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	module, err := h.courses.GetModule(c.Request.Context(), moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

// Start records that the caller opened a module within a course
func (h *ModuleHandler) Start(c *gin.Context) {
	h.LogRequest(c, "Starting module")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req validator.ModuleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	if err := h.progress.StartModule(c.Request.Context(), user.ID, c.Param("id"), req.CourseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "module started"})
}

// Complete marks a module finished on the caller's enrollment. Completing
// a module twice is a no-op for the completion set.
func (h *ModuleHandler) Complete(c *gin.Context) {
	h.LogRequest(c, "Completing module")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req validator.ModuleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	enrollment, err := h.progress.CompleteModule(c.Request.Context(), user.ID, c.Param("id"), req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Status reports where the caller stands on a module
func (h *ModuleHandler) Status(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	status, err := h.progress.ModuleStatus(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
