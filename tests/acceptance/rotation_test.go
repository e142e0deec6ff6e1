package acceptance

import (
	"net/http"
)

func (s *Suite) TestRefresh_RotatesTokenPair() {
	sess := s.register("rotate@example.com", "Password123")

	resp, next := s.refresh(sess)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.NotEmpty(next.Auth.AccessToken)
	s.Equal("Bearer", next.Auth.TokenType)
	s.NotEmpty(next.Cookies, "Rotation should set a new refresh cookie")
	s.NotEqual(sess.Cookies[0].Value, next.Cookies[0].Value, "Refresh token value should change on rotation")
}

func (s *Suite) TestRefresh_OldTokenRejectedAfterRotation() {
	sess := s.register("replay@example.com", "Password123")

	resp, _ := s.refresh(sess)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Presenting the pre-rotation cookie again is a replay
	replayResp, _ := s.refresh(sess)
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)
}

func (s *Suite) TestRefresh_ReplayRevokesChain() {
	sess := s.register("chain@example.com", "Password123")

	resp, second := s.refresh(sess)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp, third := s.refresh(second)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Replaying the original token kills the whole chain
	replayResp, _ := s.refresh(sess)
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)

	// The freshest token in the chain is revoked too
	chainResp, _ := s.refresh(third)
	s.Equal(http.StatusUnauthorized, chainResp.StatusCode)
}

func (s *Suite) TestRefresh_ChainSurvivesNormalUse() {
	sess := s.register("longchain@example.com", "Password123")

	current := sess
	for i := 0; i < 5; i++ {
		resp, next := s.refresh(current)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		current = next
	}
}

func (s *Suite) TestRefresh_NoCookieOrBodyToken() {
	sess := s.register("nocookie@example.com", "Password123")

	// Access token present, refresh token absent everywhere
	noCookie := session{Auth: sess.Auth}
	resp, _ := s.refresh(noCookie)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRefresh_MissingAccessToken() {
	sess := s.register("nobody2@example.com", "Password123")

	stripped := sess
	stripped.Auth.AccessToken = ""
	resp, _ := s.refresh(stripped)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRefresh_ForeignAccessToken() {
	alice := s.register("alice-rot@example.com", "Password123")
	bob := s.register("bob-rot@example.com", "Password123")

	// Bob's access token with Alice's refresh cookie
	mixed := session{Auth: bob.Auth, Cookies: alice.Cookies}
	resp, _ := s.refresh(mixed)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
