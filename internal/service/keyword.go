package service

import (
	"strings"

	"github.com/prperemyshlev/jobboard-service/internal/domain"
)

// ExtractKeywords flattens a candidate profile into the list of search
// terms used against the job keyword index. Terms are lowercased to match
// the lower(keyword) index, deduplicated and returned in the order they
// first appear, so the explicit keywords of the profile win the cap over
// derived ones.
func ExtractKeywords(profile *domain.Profile) []string {
	seen := make(map[string]struct{})
	var terms []string

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, keyword := range profile.Keywords {
		add(keyword)
	}
	add(profile.JobTitle)
	add(profile.CompanyName)
	for _, exp := range profile.Experiences {
		add(exp.Position)
		add(exp.Company)
	}
	for _, interest := range profile.Interests {
		add(interest.Title)
	}
	for _, skill := range profile.Skills {
		add(skill.Name)
	}

	return terms
}
