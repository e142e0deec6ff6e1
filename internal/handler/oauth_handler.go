package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobboard-service/internal/dto"
	"github.com/prperemyshlev/jobboard-service/internal/service"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler handles LinkedIn sign-in requests
type OAuthHandler struct {
	linkedinService *service.LinkedInAuthService
	logger          *zap.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(linkedinService *service.LinkedInAuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		linkedinService: linkedinService,
		logger:          logger,
	}
}

// LinkedInLogin starts the LinkedIn authorization-code flow
// @Summary Start LinkedIn sign-in
// @Description Redirect the browser to LinkedIn's authorization page
// @Tags oauth
// @Success 307
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/linkedin [get]
func (h *OAuthHandler) LinkedInLogin(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to start sign-in",
		})
		return
	}

	// State travels in a short-lived cookie and is checked on callback
	c.SetCookie(oauthStateCookie, state, 600, "/api/v1/auth/linkedin", "", true, true)

	c.Redirect(http.StatusTemporaryRedirect, h.linkedinService.AuthCodeURL(state))
}

// LinkedInCallback finishes the LinkedIn flow and signs the user in
// @Summary LinkedIn sign-in callback
// @Description Exchange the authorization code and sign the user in
// @Tags oauth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "CSRF state"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/linkedin/callback [get]
func (h *OAuthHandler) LinkedInCallback(c *gin.Context) {
	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid OAuth state",
		})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/api/v1/auth/linkedin", "", true, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Missing authorization code",
		})
		return
	}

	response, err := h.linkedinService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("linkedin sign-in failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "LinkedIn sign-in failed",
		})
		return
	}

	setRefreshCookie(c, response.RefreshToken, response.ExpiresIn)

	c.JSON(http.StatusOK, response.AuthResponse)
}

func generateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
