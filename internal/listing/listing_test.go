package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fiitjobs/jobadmin/internal/models"
)

func TestFilterJobs(t *testing.T) {
	jobs := []models.Job{
		{ID: "1", Title: "Go Developer", Location: "Chennai", CompanyName: "FIIT"},
		{ID: "2", Title: "Designer", Location: "Remote", Company: "Acme"},
		{ID: "3", Title: "Data Analyst", Location: "Delhi"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"1", "2", "3"}},
		{query: "  go ", want: []string{"1"}},
		{query: "REMOTE", want: []string{"2"}},
		{query: "acme", want: []string{"2"}},
		{query: "fiit", want: []string{"1"}},
		{query: "nothing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := []string{}
			for _, j := range FilterJobs(jobs, tt.query) {
				got = append(got, j.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterApplications(t *testing.T) {
	apps := []models.Application{
		{ID: "a1", Applicant: &models.Applicant{Name: "Ann Lee", Email: "ann@x.test"}, Job: &models.JobSummary{Title: "Go Developer"}},
		{ID: "a2", Applicant: &models.Applicant{Name: "Bob", Email: "bob@y.test"}},
		{ID: "a3"},
	}

	assert.Len(t, FilterApplications(apps, ""), 3)

	got := FilterApplications(apps, "y.test")
	assert.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)

	got = FilterApplications(apps, "developer")
	assert.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestFilterUsers(t *testing.T) {
	users := []models.User{{ID: "u1", Name: "Ann", Email: "ann@x.test"}, {ID: "u2", Email: "bob@y.test"}}

	got := FilterUsers(users, "BOB")
	assert.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)
}

func TestPager(t *testing.T) {
	p := NewPager(0, 0)
	assert.Equal(t, Pager{Page: 1, TotalPages: 1}, p)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())

	p = NewPager(9, 3)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 2, p.Prev())
	assert.Equal(t, 3, p.Next())

	p = NewPager(2, 3)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 3, p.Next())
}
