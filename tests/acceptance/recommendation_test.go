package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
)

func (s *Suite) seedProfile(userID string, keywords ...string) int64 {
	var profileID int64
	err := s.Postgres.DB.QueryRow(
		`INSERT INTO profiles (user_id, keywords) VALUES ($1, $2) RETURNING id`,
		userID, pq.Array(keywords),
	).Scan(&profileID)
	s.Require().NoError(err)
	return profileID
}

func (s *Suite) seedJob(title string, keywords ...string) int64 {
	var jobID int64
	err := s.Postgres.DB.QueryRow(
		`INSERT INTO jobs (title, company_name) VALUES ($1, 'Acme') RETURNING id`,
		title,
	).Scan(&jobID)
	s.Require().NoError(err)

	for _, keyword := range keywords {
		_, err := s.Postgres.DB.Exec(
			`INSERT INTO job_keywords (job_id, keyword) VALUES ($1, $2)`,
			jobID, keyword,
		)
		s.Require().NoError(err)
	}
	return jobID
}

func (s *Suite) getRecommendations(accessToken string, page int) (*http.Response, domain.JobPage) {
	url := fmt.Sprintf("%s/api/v1/recommendations?page=%d", s.BaseURL, page)
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	var result domain.JobPage
	if resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&result))
	}
	resp.Body.Close()

	return resp, result
}

func (s *Suite) TestRecommendations_MatchesKeywords() {
	sess := s.register("recs@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID, "golang")

	matched := s.seedJob("Go Developer", "Golang", "backend")
	s.seedJob("Frontend Developer", "react")

	resp, page := s.getRecommendations(sess.Auth.AccessToken, 1)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Equal(1, page.TotalCount)
	s.Require().Len(page.Items, 1)
	s.Equal(matched, page.Items[0].ID)
	s.Equal("Go Developer", page.Items[0].Title)
}

func (s *Suite) TestRecommendations_NoProfile() {
	sess := s.register("noprofile@example.com", "Password123")

	resp, _ := s.getRecommendations(sess.Auth.AccessToken, 1)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestRecommendations_ProfileWithoutSignal() {
	sess := s.register("nosignal@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID)
	s.seedJob("Go Developer", "golang")

	resp, page := s.getRecommendations(sess.Auth.AccessToken, 1)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Empty(page.Items)
	s.Zero(page.TotalCount)
}

func (s *Suite) TestRecommendations_Pagination() {
	sess := s.register("paging@example.com", "Password123")
	s.seedProfile(sess.Auth.User.ID, "golang")

	for i := 0; i < 25; i++ {
		s.seedJob(fmt.Sprintf("Go Job %d", i), "golang")
	}

	resp, page1 := s.getRecommendations(sess.Auth.AccessToken, 1)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(25, page1.TotalCount)
	s.Len(page1.Items, 20)

	resp, page2 := s.getRecommendations(sess.Auth.AccessToken, 2)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(25, page2.TotalCount)
	s.Len(page2.Items, 5)

	// Ascending id order keeps the pages disjoint
	s.Less(page1.Items[19].ID, page2.Items[0].ID)
}

func (s *Suite) TestRecommendations_RequiresAuth() {
	resp, err := http.Get(s.BaseURL + "/api/v1/recommendations")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
