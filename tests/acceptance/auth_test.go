package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prperemyshlev/jobboard-service/internal/dto"
)

type session struct {
	Auth    dto.AuthResponse
	Cookies []*http.Cookie
}

func (s *Suite) register(email, password string) session {
	reqBody := dto.RegisterRequest{Email: email, Password: password}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Registration should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	return session{Auth: authResp, Cookies: resp.Cookies()}
}

func (s *Suite) refresh(sess session) (*http.Response, session) {
	reqBody := dto.RefreshRequest{AccessToken: sess.Auth.AccessToken}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range sess.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	var next session
	if resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&next.Auth))
		next.Cookies = resp.Cookies()
	}
	resp.Body.Close()

	return resp, next
}

func (s *Suite) TestRegister_Success() {
	sess := s.register("test@example.com", "Password123")

	s.NotEmpty(sess.Auth.AccessToken)
	s.Equal("Bearer", sess.Auth.TokenType)
	s.NotZero(sess.Auth.ExpiresIn)
	s.Equal("test@example.com", sess.Auth.User.Email)
	s.Equal("candidate", sess.Auth.User.Role)
	s.NotEmpty(sess.Auth.User.ID)
	s.Require().NotEmpty(sess.Cookies, "Should have refresh token cookie")

	// Path scoping must cover both /refresh and /logout or a browser never
	// sends the cookie to logout
	s.Equal("refresh_token", sess.Cookies[0].Name)
	s.Equal("/api/v1/auth", sess.Cookies[0].Path)
	s.True(sess.Cookies[0].HttpOnly)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com", "Password123")

	reqBody := dto.RegisterRequest{Email: "duplicate@example.com", Password: "Password123"}
	body, _ := json.Marshal(reqBody)
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_InvalidEmail() {
	reqBody := dto.RegisterRequest{Email: "invalid-email", Password: "Password123"}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_ShortPassword() {
	reqBody := dto.RegisterRequest{Email: "test@example.com", Password: "short"}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/register", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "Password123")

	loginReq := dto.LoginRequest{Email: "login@example.com", Password: "Password123"}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.Equal("login@example.com", authResp.User.Email)
	s.NotEmpty(resp.Cookies(), "Should have refresh token cookie")
}

func (s *Suite) TestLogin_InvalidCredentials() {
	loginReq := dto.LoginRequest{Email: "nonexistent@example.com", Password: "wrongpassword"}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.register("wrongpass@example.com", "CorrectPassword123")

	loginReq := dto.LoginRequest{Email: "wrongpass@example.com", Password: "WrongPassword123"}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_LockoutAfterRepeatedFailures() {
	s.register("lockout@example.com", "Password123")

	badBody, _ := json.Marshal(dto.LoginRequest{Email: "lockout@example.com", Password: "WrongPassword1"})
	for i := 0; i < 5; i++ {
		resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(badBody))
		s.Require().NoError(err)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	// The account is locked now; the correct password is rejected too
	goodBody, _ := json.Marshal(dto.LoginRequest{Email: "lockout@example.com", Password: "Password123"})
	resp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(goodBody))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusLocked, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	sess := s.register("getme@example.com", "Password123")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var userResp dto.UserResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&userResp))

	s.NotEmpty(userResp.ID)
	s.Equal("getme@example.com", userResp.Email)
	s.Equal("candidate", userResp.Role)
	s.NotEmpty(userResp.CreatedAt)
	s.NotEmpty(userResp.UpdatedAt)
	s.False(userResp.IsEmailVerified)
	s.False(userResp.IsFederated)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_Success() {
	sess := s.register("logout@example.com", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))
	for _, cookie := range sess.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.Equal("Logged out successfully", successResp.Message)

	// The revoked refresh token is rejected afterwards
	refreshResp, _ := s.refresh(sess)
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)
}

func (s *Suite) TestChangePassword_InvalidatesSessions() {
	sess := s.register("changepw@example.com", "Password123")

	changeBody, _ := json.Marshal(dto.ChangePasswordRequest{
		CurrentPassword: "Password123",
		NewPassword:     "NewPassword456",
	})
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/change-password", bytes.NewBuffer(changeBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old refresh token is dead
	refreshResp, _ := s.refresh(sess)
	s.Equal(http.StatusUnauthorized, refreshResp.StatusCode)

	// New password works
	loginBody, _ := json.Marshal(dto.LoginRequest{Email: "changepw@example.com", Password: "NewPassword456"})
	loginResp, err := http.Post(s.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(loginBody))
	s.Require().NoError(err)
	defer loginResp.Body.Close()
	s.Equal(http.StatusOK, loginResp.StatusCode)
}
