package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezakmal/insightify/internal/services"
	"github.com/rezakmal/insightify/internal/utils"
)

// MlHandler fronts the insight gateway. Generation calls the upstream
// model service; reads serve the last stored result.
type MlHandler struct {
	BaseHandler
	ml services.MlService
}

func NewMlHandler(ml services.MlService, logger utils.Logger) *MlHandler {
	return &MlHandler{
		BaseHandler: NewBaseHandler(logger),
		ml:          ml,
	}
}

// GenerateProfile asks the model service for a fresh learner profile
// @Summary Generate learner profile
// @Tags ml
// @Produce json
// @Success 200 {object} models.MlProfile
// @Failure 502 {object} ErrorResponse "Model service timeout, unreachable, or non-2xx"
// @Router /ml/profile/generate [post]
func (h *MlHandler) GenerateProfile(c *gin.Context) {
	h.LogRequest(c, "Generating learner profile")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.ml.GenerateProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GenerateRecommendations derives recommendations from the stored profile
// @Summary Generate recommendations
// @Tags ml
// @Produce json
// @Success 200 {object} models.MlRecommendation
// @Failure 400 {object} ErrorResponse "No profile generated yet"
// @Router /ml/recommendations/generate [post]
func (h *MlHandler) GenerateRecommendations(c *gin.Context) {
	h.LogRequest(c, "Generating recommendations")

	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	rec, err := h.ml.GenerateRecommendations(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetProfile returns the stored profile, or null when none exists
func (h *MlHandler) GetProfile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.ml.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetRecommendations returns the stored recommendations, or null
func (h *MlHandler) GetRecommendations(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	rec, err := h.ml.GetRecommendations(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
