package domain

import "time"

// Profile represents a candidate profile. The profile is read input for
// recommendation matching; this service never mutates it.
type Profile struct {
	ID          int64        `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	JobTitle    string       `json:"job_title" db:"job_title"`
	CompanyName string       `json:"company_name" db:"company_name"`
	Keywords    []string     `json:"keywords"`
	Experiences []Experience `json:"experiences"`
	Interests   []Interest   `json:"interests"`
	Skills      []Skill      `json:"skills"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// Experience represents a single work experience entry on a profile
type Experience struct {
	ID        int64  `json:"id" db:"id"`
	ProfileID int64  `json:"profile_id" db:"profile_id"`
	Position  string `json:"position" db:"position"`
	Company   string `json:"company" db:"company"`
}

// Interest represents an interest entry on a profile
type Interest struct {
	ID        int64  `json:"id" db:"id"`
	ProfileID int64  `json:"profile_id" db:"profile_id"`
	Title     string `json:"title" db:"title"`
}

// Skill represents a skill entry on a profile
type Skill struct {
	ID        int64  `json:"id" db:"id"`
	ProfileID int64  `json:"profile_id" db:"profile_id"`
	Name      string `json:"name" db:"name"`
}

// HasSignal checks whether the profile carries enough data to drive
// keyword matching. Profiles without signal get an empty recommendation
// page instead of an unfiltered job list.
func (p *Profile) HasSignal() bool {
	return len(p.Keywords) > 0 || len(p.Experiences) > 0 || len(p.Interests) > 0 || p.JobTitle != ""
}
