package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
	"github.com/prperemyshlev/jobboard-service/internal/service"
)

// JobAgentHandler manages job agent subscription settings
type JobAgentHandler struct {
	agents service.JobAgentService
}

// NewJobAgentHandler creates a new job agent handler
func NewJobAgentHandler(agents service.JobAgentService) *JobAgentHandler {
	return &JobAgentHandler{
		agents: agents,
	}
}

func toJobAgentResponse(agent *domain.JobAgent) dto.JobAgentResponse {
	response := dto.JobAgentResponse{
		Enabled:   agent.Enabled,
		Frequency: string(agent.Frequency),
	}
	if agent.LastSentAt != nil {
		v := agent.LastSentAt.Format(time.RFC3339)
		response.LastSentAt = &v
	}
	if agent.NextSendAt != nil {
		v := agent.NextSendAt.Format(time.RFC3339)
		response.NextSendAt = &v
	}
	return response
}

// Get returns the current user's job agent settings
// @Summary Get job agent settings
// @Description Get the current user's job agent subscription
// @Tags job-agent
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.JobAgentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /job-agent [get]
func (h *JobAgentHandler) Get(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	agent, err := h.agents.Get(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "No job agent configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toJobAgentResponse(agent))
}

// Save creates or updates the current user's job agent settings
// @Summary Save job agent settings
// @Description Create or update the current user's job agent subscription
// @Tags job-agent
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.JobAgentRequest true "Job agent settings"
// @Success 200 {object} dto.JobAgentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /job-agent [put]
func (h *JobAgentHandler) Save(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	var req dto.JobAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	agent, err := h.agents.Save(c.Request.Context(), userID.(string), req.Enabled, domain.Frequency(req.Frequency))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Create a profile before enabling the job agent",
			})
		case errors.Is(err, service.ErrInvalidFrequency):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal server error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, toJobAgentResponse(agent))
}

// Unsubscribe disables a job agent via its emailed unsubscribe link
// @Summary Unsubscribe a job agent
// @Description Disable the job agent identified by the unsubscribe token
// @Tags job-agent
// @Produce json
// @Param token query string true "Unsubscribe token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /job-agent/unsubscribe [get]
func (h *JobAgentHandler) Unsubscribe(c *gin.Context) {
	token := c.Query("token")

	if err := h.agents.Unsubscribe(c.Request.Context(), token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Unknown unsubscribe token",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Job agent disabled",
	})
}
