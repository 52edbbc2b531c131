package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

// LearningHandler serves the authenticated user's own learning history.
type LearningHandler struct {
	BaseHandler
	activity services.ActivityService
	progress services.ProgressService
}

func NewLearningHandler(activity services.ActivityService, progress services.ProgressService, logger utils.Logger) *LearningHandler {
	return &LearningHandler{
		BaseHandler: NewBaseHandler(logger),
		activity:    activity,
		progress:    progress,
	}
}

func optionalQuery(c *gin.Context, key string) *string {
	if value := c.Query(key); value != "" {
		return &value
	}
	return nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

// Activity lists the caller's ledger entries, newest first
// @Summary List activity
// @Tags users
// @Produce json
// @Param courseId query string false "Filter by course"
// @Param moduleId query string false "Filter by module"
// @Param type query string false "Filter by event type"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, capped at 200"
// @Success 200 {object} services.ActivityListResponse
// @Router /users/me/activity [get]
func (h *LearningHandler) Activity(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var eventType *models.ActivityType
	if raw := c.Query("type"); raw != "" {
		t := models.ActivityType(raw)
		eventType = &t
	}

	resp, err := h.activity.Query(c.Request.Context(), user.ID,
		optionalQuery(c, "courseId"),
		optionalQuery(c, "moduleId"),
		eventType,
		intQuery(c, "page", 1),
		intQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecordActivity appends a client-reported event to the caller's ledger
func (h *LearningHandler) RecordActivity(c *gin.Context) {
	h.LogRequest(c, "Recording activity event")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.ActivityRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	activity, err := h.activity.Record(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// DailyActivity returns a zero-filled per-day event series ending today
func (h *LearningHandler) DailyActivity(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	counts, err := h.activity.DailyCounts(c.Request.Context(), user.ID,
		intQuery(c, "days", 7),
		optionalQuery(c, "courseId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// QuizResults lists the caller's quiz attempts, newest first
func (h *LearningHandler) QuizResults(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.activity.QuizResults(c.Request.Context(), user.ID,
		optionalQuery(c, "moduleId"),
		intQuery(c, "page", 1),
		intQuery(c, "limit", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Progress returns the caller's enrollment snapshot for a course: stored
// percentage, completion set and embedded quiz history. The quiz-derived
// view lives on GET /courses/:id/progress.
func (h *LearningHandler) Progress(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "courseId query parameter is required"})
		return
	}

	view, err := h.progress.EnrollmentProgress(c.Request.Context(), user.ID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
