package domain

import "time"

// Job represents a published job post
type Job struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	CompanyName string    `json:"company_name" db:"company_name"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// JobPage represents one page of matched jobs, ordered by ascending job id
// so repeated calls with an unchanged index return identical pages
type JobPage struct {
	Items      []Job `json:"items"`
	TotalCount int   `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// EmptyJobPage returns a page with zero matches for the given page number
func EmptyJobPage(page, pageSize int) *JobPage {
	return &JobPage{Items: []Job{}, TotalCount: 0, Page: page, PageSize: pageSize}
}
