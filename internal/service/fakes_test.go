package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobboard-service/internal/domain"
	"github.com/prperemyshlev/jobboard-service/internal/repository"
)

var errTestPublish = errors.New("publish failed")

// In-memory fakes implementing the repository interfaces. They mirror the
// SQL semantics the real repositories rely on, in particular the
// conditional update in Rotate.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) UpdateLockout(_ context.Context, userID string, failedCount int, lockoutUntil *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginCount = failedCount
	u.LockoutUntil = lockoutUntil
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.Token]; ok {
		return repository.ErrDuplicateToken
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeTokenRepo) GetByValue(_ context.Context, value, userID string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTokenRepo) GetActiveByUserID(_ context.Context, userID string) ([]*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var active []*domain.RefreshToken
	for _, t := range r.tokens {
		if t.UserID == userID && t.IsActive(now) {
			copied := *t
			active = append(active, &copied)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.Before(active[j].CreatedAt) })
	return active, nil
}

func (r *fakeTokenRepo) Rotate(_ context.Context, value, userID, replacedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.UserID != userID || t.RevokedAt != nil {
		return repository.ErrAlreadyRevoked
	}
	t.RevokedAt = &at
	t.ReplacedByToken = &replacedBy
	return nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, value, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || t.UserID != userID || t.RevokedAt != nil || t.IsExpired(at) {
		return repository.ErrAlreadyRevoked
	}
	t.RevokedAt = &at
	return nil
}

func (r *fakeTokenRepo) RevokeCreatedAfter(_ context.Context, userID string, after, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil && t.CreatedAt.After(after) {
			t.RevokedAt = &at
			count++
		}
	}
	return count, nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil && !t.IsExpired(at) {
			t.RevokedAt = &at
			count++
		}
	}
	return count, nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for value, t := range r.tokens {
		if t.IsExpired(now) {
			delete(r.tokens, value)
		}
	}
	return nil
}

type fakeProviderRepo struct {
	mu        sync.Mutex
	providers map[string]*domain.OAuthProvider
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: make(map[string]*domain.OAuthProvider)}
}

func providerKey(provider, providerUserID string) string {
	return provider + ":" + providerUserID
}

func (r *fakeProviderRepo) Create(_ context.Context, provider *domain.OAuthProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := providerKey(provider.Provider, provider.ProviderUserID)
	if _, ok := r.providers[key]; ok {
		return repository.ErrDuplicateOAuthProvider
	}
	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	provider.CreatedAt = time.Now()
	copied := *provider
	r.providers[key] = &copied
	return nil
}

func (r *fakeProviderRepo) GetByProvider(_ context.Context, provider, providerUserID string) (*domain.OAuthProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerKey(provider, providerUserID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProviderRepo) GetByUserID(_ context.Context, userID string) ([]*domain.OAuthProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.OAuthProvider
	for _, p := range r.providers {
		if p.UserID == userID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeProviderRepo) Delete(_ context.Context, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.providers {
		if p.ID == providerID {
			delete(r.providers, key)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *fakeProfileRepo) put(profile *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

type fakeJobRepo struct {
	mu       sync.Mutex
	jobs     map[int64]domain.Job
	keywords map[int64][]string
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:     make(map[int64]domain.Job),
		keywords: make(map[int64][]string),
	}
}

func (r *fakeJobRepo) put(job domain.Job, keywords ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	r.keywords[job.ID] = keywords
}

// FindIDsByKeywords mirrors the SQL index lookup: only the keyword side
// is lowercased, terms are compared as given.
func (r *fakeJobRepo) FindIDsByKeywords(_ context.Context, terms []string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		wanted[term] = struct{}{}
	}
	var ids []int64
	for id, keywords := range r.keywords {
		for _, keyword := range keywords {
			if _, ok := wanted[strings.ToLower(keyword)]; ok {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeJobRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []domain.Job
	for _, id := range ids {
		if job, ok := r.jobs[id]; ok {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id int64) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

type fakeJobAgentRepo struct {
	mu     sync.Mutex
	nextID int64
	agents map[int64]*domain.JobAgent
}

func newFakeJobAgentRepo() *fakeJobAgentRepo {
	return &fakeJobAgentRepo{agents: make(map[int64]*domain.JobAgent)}
}

func (r *fakeJobAgentRepo) GetByUserID(_ context.Context, userID string) (*domain.JobAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeJobAgentRepo) Upsert(_ context.Context, agent *domain.JobAgent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.agents {
		if existing.ProfileID == agent.ProfileID {
			existing.Enabled = agent.Enabled
			existing.Frequency = agent.Frequency
			existing.NextSendAt = agent.NextSendAt
			existing.UpdatedAt = time.Now()
			agent.ID = existing.ID
			agent.UnsubscribeToken = existing.UnsubscribeToken
			agent.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	r.nextID++
	agent.ID = r.nextID
	if agent.UnsubscribeToken == "" {
		agent.UnsubscribeToken = uuid.New().String()
	}
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = agent.CreatedAt
	copied := *agent
	r.agents[agent.ID] = &copied
	return nil
}

func (r *fakeJobAgentRepo) Update(_ context.Context, agent *domain.JobAgent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agent.ID]; !ok {
		return repository.ErrNotFound
	}
	agent.UpdatedAt = time.Now()
	copied := *agent
	r.agents[agent.ID] = &copied
	return nil
}

func (r *fakeJobAgentRepo) FindDue(_ context.Context, now time.Time) ([]*domain.JobAgent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*domain.JobAgent
	for _, a := range r.agents {
		if a.IsDue(now) {
			copied := *a
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (r *fakeJobAgentRepo) DisableByUnsubscribeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.UnsubscribeToken == token {
			a.Enabled = false
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

type publishedDigest struct {
	ProfileID int64
	UserID    string
	Frequency domain.Frequency
}

type fakePublisher struct {
	mu       sync.Mutex
	digests  []publishedDigest
	welcomes []string
	fail     bool
}

func (p *fakePublisher) PublishJobAgentDigest(_ context.Context, profileID int64, userID string, frequency domain.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errTestPublish
	}
	p.digests = append(p.digests, publishedDigest{ProfileID: profileID, UserID: userID, Frequency: frequency})
	return nil
}

func (p *fakePublisher) PublishWelcomeEmail(_ context.Context, userID, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errTestPublish
	}
	p.welcomes = append(p.welcomes, email)
	return nil
}
