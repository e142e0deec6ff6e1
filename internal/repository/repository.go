package repository

import (
	"github.com/prperemyshlev/jobboard-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User          UserRepository
	Token         TokenRepository
	OAuthProvider OAuthProviderRepository
	Profile       ProfileRepository
	Job           JobRepository
	JobAgent      JobAgentRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Token:         NewTokenRepository(db),
		OAuthProvider: NewOAuthProviderRepository(db),
		Profile:       NewProfileRepository(db),
		Job:           NewJobRepository(db),
		JobAgent:      NewJobAgentRepository(db),
	}
}
