package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
	"github.com/prperemyshlev/jobboard-service/internal/service"
)

// RecommendationHandler serves personalized job recommendations
type RecommendationHandler struct {
	recommendations service.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
	}
}

// Recommend returns a page of jobs matching the current user's profile
// @Summary Get job recommendations
// @Description Get a page of jobs matching the current user's profile keywords
// @Tags recommendations
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Success 200 {object} domain.JobPage
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /recommendations [get]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.recommendations.Recommend(c.Request.Context(), userID.(string), page)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Create a profile to get recommendations",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
