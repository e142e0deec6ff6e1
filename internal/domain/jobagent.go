package domain

import "time"

// Frequency defines how often a job agent sends recommendation emails
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// IsValid checks the frequency against the known values
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// NextSendAfter returns the next dispatch time for this frequency.
// Unknown values fall back to weekly.
func (f Frequency) NextSendAfter(now time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return now.AddDate(0, 0, 1)
	case FrequencyMonthly:
		return now.AddDate(0, 1, 0)
	default:
		return now.AddDate(0, 0, 7)
	}
}

// JobAgent represents a user's standing subscription to periodic
// job-recommendation emails
type JobAgent struct {
	ID               int64      `json:"id" db:"id"`
	ProfileID        int64      `json:"profile_id" db:"profile_id"`
	UserID           string     `json:"user_id" db:"user_id"`
	Enabled          bool       `json:"enabled" db:"enabled"`
	Frequency        Frequency  `json:"frequency" db:"frequency"`
	LastSentAt       *time.Time `json:"last_sent_at" db:"last_sent_at"`
	NextSendAt       *time.Time `json:"next_send_at" db:"next_send_at"`
	UnsubscribeToken string     `json:"-" db:"unsubscribe_token"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsDue checks whether the agent should be dispatched at the given time
func (a *JobAgent) IsDue(now time.Time) bool {
	return a.Enabled && (a.NextSendAt == nil || !a.NextSendAt.After(now))
}
