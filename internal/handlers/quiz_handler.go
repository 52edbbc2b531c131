package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
	"github.com/rezakmal/insightify/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	quizzes services.QuizService
}

func NewQuizHandler(quizzes services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizzes:     quizzes,
	}
}

// Start returns the learner view of a module's quiz, without answers.
// The body is optional; an authenticated start with a courseId records a
// quiz_start event that later anchors the attempt duration.
// @Summary Start quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {object} services.QuizView
// @Failure 404 {object} ErrorResponse "Module has no quiz"
// @Router /quiz/{moduleId}/start [post]
func (h *QuizHandler) Start(c *gin.Context) {
	h.LogRequest(c, "Starting quiz")

	var req validator.QuizStartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
			return
		}
	}

	userID := ""
	if user, ok := h.currentUser(c); ok {
		userID = user.ID
	}

	view, err := h.quizzes.Start(c.Request.Context(), c.Param("moduleId"), userID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Submit scores the caller's answers and persists the attempt
// @Summary Submit quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {object} services.ScoreResult
// @Failure 400 {object} ErrorResponse "Empty answer list"
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{moduleId}/submit [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	h.LogRequest(c, "Submitting quiz")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.QuizSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Detail: err.Error()})
		return
	}

	result, err := h.quizzes.Submit(c.Request.Context(), c.Param("moduleId"), user.ID, req.CourseID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Import replaces a module's quiz from an uploaded XLSX workbook
func (h *QuizHandler) Import(c *gin.Context) {
	h.LogRequest(c, "Importing quiz workbook")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "workbook file is required", Detail: err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "could not open uploaded file", Detail: err.Error()})
		return
	}
	defer file.Close()

	quiz, err := h.quizzes.ImportQuiz(c.Request.Context(), c.Param("moduleId"), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"quizId":         quiz.ID,
		"moduleId":       quiz.ModuleID,
		"totalQuestions": len(quiz.Questions),
	})
}
