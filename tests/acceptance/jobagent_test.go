package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prperemyshlev/jobboard-service/internal/dto"
)

func (s *Suite) putJobAgent(accessToken string, reqBody dto.JobAgentRequest) (*http.Response, dto.JobAgentResponse) {
	body, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("PUT", s.BaseURL+"/api/v1/job-agent", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	var agentResp dto.JobAgentResponse
	if resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&agentResp))
	}
	resp.Body.Close()

	return resp, agentResp
}

func (s *Suite) TestJobAgent_SaveAndGet() {
	sess := s.register("agent@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID, "golang")

	resp, saved := s.putJobAgent(sess.Auth.AccessToken, dto.JobAgentRequest{
		Enabled:   true,
		Frequency: "daily",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.True(saved.Enabled)
	s.Equal("daily", saved.Frequency)
	s.NotNil(saved.NextSendAt)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/job-agent", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))
	getResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer getResp.Body.Close()

	s.Equal(http.StatusOK, getResp.StatusCode)

	var fetched dto.JobAgentResponse
	s.Require().NoError(json.NewDecoder(getResp.Body).Decode(&fetched))
	s.True(fetched.Enabled)
	s.Equal("daily", fetched.Frequency)
}

func (s *Suite) TestJobAgent_GetWithoutAgent() {
	sess := s.register("noagent@example.com", "Password123")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/job-agent", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestJobAgent_SaveRequiresProfile() {
	sess := s.register("agentnoprofile@example.com", "Password123")

	resp, _ := s.putJobAgent(sess.Auth.AccessToken, dto.JobAgentRequest{
		Enabled:   true,
		Frequency: "weekly",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestJobAgent_RejectsUnknownFrequency() {
	sess := s.register("agentfreq@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID, "golang")

	resp, _ := s.putJobAgent(sess.Auth.AccessToken, dto.JobAgentRequest{
		Enabled:   true,
		Frequency: "hourly",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestJobAgent_Unsubscribe() {
	sess := s.register("unsub@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID, "golang")

	resp, _ := s.putJobAgent(sess.Auth.AccessToken, dto.JobAgentRequest{
		Enabled:   true,
		Frequency: "weekly",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var token string
	err := s.Postgres.DB.QueryRow(
		`SELECT unsubscribe_token FROM job_agents WHERE user_id = $1`,
		sess.Auth.User.ID,
	).Scan(&token)
	s.Require().NoError(err)

	// The unsubscribe link works without a session
	unsubResp, err := http.Get(fmt.Sprintf("%s/api/v1/job-agent/unsubscribe?token=%s", s.BaseURL, token))
	s.Require().NoError(err)
	defer unsubResp.Body.Close()
	s.Equal(http.StatusOK, unsubResp.StatusCode)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/job-agent", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sess.Auth.AccessToken))
	getResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer getResp.Body.Close()

	var fetched dto.JobAgentResponse
	s.Require().NoError(json.NewDecoder(getResp.Body).Decode(&fetched))
	s.False(fetched.Enabled)
}

func (s *Suite) TestJobAgent_UnsubscribeUnknownToken() {
	resp, err := http.Get(s.BaseURL + "/api/v1/job-agent/unsubscribe?token=00000000-0000-0000-0000-000000000000")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}
