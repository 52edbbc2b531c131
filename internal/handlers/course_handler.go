package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courses  services.CourseService
	progress services.ProgressService
}

func NewCourseHandler(courses services.CourseService, progress services.ProgressService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
		progress:    progress,
	}
}

// Create registers a course with an ordered module list
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Referenced module does not exist"
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	h.LogRequest(c, "Creating course")

	var req services.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	course, err := h.courses.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// List returns the course catalog
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// Get returns one course with its ordered module references
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// Modules returns a course's modules in gating order
func (h *CourseHandler) Modules(c *gin.Context) {
	modules, err := h.courses.Modules(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, modules)
}

// Progress returns the caller's quiz-derived progress through a course
// @Summary Course progress
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseProgressView
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/progress [get]
func (h *CourseHandler) Progress(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	progress, err := h.progress.CourseProgress(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Enroll enrolls the caller in a course. A first enrollment answers 201,
// enrolling again returns the existing record with 200.
func (h *CourseHandler) Enroll(c *gin.Context) {
	h.LogRequest(c, "Enrolling user in course")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	enrollment, created, err := h.progress.Enroll(c.Request.Context(), user.ID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, enrollment)
}
