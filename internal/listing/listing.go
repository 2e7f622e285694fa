// Package listing filters and pages lists the backend already paginated.
package listing

import (
	"strings"

	"github.com/fiitjobs/jobadmin/internal/models"
)

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// FilterJobs keeps jobs whose title, location or company matches query
func FilterJobs(jobs []models.Job, query string) []models.Job {
	q := normalize(query)
	if q == "" {
		return jobs
	}
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if matches(q, j.Title, j.Location, j.DisplayCompany()) {
			out = append(out, j)
		}
	}
	return out
}

// FilterApplications keeps applications whose applicant name, applicant
// email or job title matches query
func FilterApplications(apps []models.Application, query string) []models.Application {
	q := normalize(query)
	if q == "" {
		return apps
	}
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		var name, email, title string
		if a.Applicant != nil {
			name, email = a.Applicant.Name, a.Applicant.Email
		}
		if a.Job != nil {
			title = a.Job.Title
		}
		if matches(q, name, email, title) {
			out = append(out, a)
		}
	}
	return out
}

// FilterUsers keeps users whose name or email matches query
func FilterUsers(users []models.User, query string) []models.User {
	q := normalize(query)
	if q == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if matches(q, u.Name, u.Email) {
			out = append(out, u)
		}
	}
	return out
}

// Pager tracks a position within server-side pages
type Pager struct {
	Page       int
	TotalPages int
}

// NewPager clamps page into [1, totalPages]
func NewPager(page, totalPages int) Pager {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pager{Page: page, TotalPages: totalPages}
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

func (p Pager) Prev() int {
	if p.HasPrev() {
		return p.Page - 1
	}
	return p.Page
}

func (p Pager) Next() int {
	if p.HasNext() {
		return p.Page + 1
	}
	return p.Page
}
