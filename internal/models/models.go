// Package models holds the job-board resources as the backend serializes them.
package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Text accepts either a JSON string or a JSON number, e.g. a salary that the
// backend returns as 50000 for some jobs and "50000" for others.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Job represents a job posting
type Job struct {
	ID           string     `json:"_id"`
	Title        string     `json:"title"`
	CompanyName  string     `json:"companyName"`
	Company      string     `json:"company,omitempty"`
	CompanyImage string     `json:"companyImage,omitempty"`
	Description  string     `json:"description"`
	Skills       []string   `json:"skills,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
	Location     string     `json:"location"`
	Salary       Text       `json:"salary,omitempty"`
	JobType      string     `json:"jobType,omitempty"`
	Type         string     `json:"type,omitempty"`
	Experience   Text       `json:"experience,omitempty"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// DisplayCompany returns whichever company field the backend filled
func (j Job) DisplayCompany() string {
	if j.CompanyName != "" {
		return j.CompanyName
	}
	return j.Company
}

// DisplayType returns whichever job type field the backend filled
func (j Job) DisplayType() string {
	if j.JobType != "" {
		return j.JobType
	}
	return j.Type
}

// JobForm is the create/edit payload for a job posting
type JobForm struct {
	CompanyName string `json:"companyName" form:"companyName" validate:"required"`
	Title       string `json:"title" form:"title" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
	Skills      string `json:"skills" form:"skills" validate:"required"` // comma-separated
	Location    string `json:"location" form:"location" validate:"required"`
	Salary      string `json:"salary" form:"salary" validate:"required,numeric"`
	JobType     string `json:"jobType" form:"jobType" validate:"required"`
	Experience  string `json:"experience" form:"experience" validate:"required"`
}

// Trim removes surrounding whitespace from every field
func (f *JobForm) Trim() {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Skills = strings.TrimSpace(f.Skills)
	f.Location = strings.TrimSpace(f.Location)
	f.Salary = strings.TrimSpace(f.Salary)
	f.JobType = strings.TrimSpace(f.JobType)
	f.Experience = strings.TrimSpace(f.Experience)
}

// JobFormFrom pre-fills an edit form from an existing job
func JobFormFrom(j Job) JobForm {
	return JobForm{
		CompanyName: j.DisplayCompany(),
		Title:       j.Title,
		Description: j.Description,
		Skills:      strings.Join(j.Skills, ","),
		Location:    j.Location,
		Salary:      j.Salary.String(),
		JobType:     j.DisplayType(),
		Experience:  j.Experience.String(),
	}
}

// Upload is an optional file attached to a multipart request
type Upload struct {
	FieldName string
	FileName  string
	Content   []byte
}

// Applicant is the user summary embedded in an application
type Applicant struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JobSummary is the job summary embedded in an application
type JobSummary struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName,omitempty"`
}

// Application represents a job application
type Application struct {
	ID        string      `json:"_id"`
	Applicant *Applicant  `json:"applicant"`
	Job       *JobSummary `json:"job"`
	Status    string      `json:"status"`
	AppliedAt *time.Time  `json:"appliedAt,omitempty"`
}

// ApplicationStatuses lists the statuses an admin can move an application to
var ApplicationStatuses = []string{"pending", "reviewed", "shortlisted", "rejected", "hired"}

// ValidApplicationStatus reports whether status is one of ApplicationStatuses
func ValidApplicationStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Education is one entry of a user's education history
type Education struct {
	Level       string `json:"level"`
	Institution string `json:"institution"`
	StartYear   Text   `json:"startYear"`
	EndYear     Text   `json:"endYear"`
}

// Project is one entry of a user's portfolio
type Project struct {
	ProjectName string `json:"projectName"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	LiveLink    string `json:"liveLink,omitempty"`
	GithubLink  string `json:"githubLink,omitempty"`
}

// User represents a platform user as seen by an admin
type User struct {
	ID           string            `json:"_id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	Provider     string            `json:"provider,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Location     string            `json:"location,omitempty"`
	Experience   Text              `json:"experience,omitempty"`
	About        string            `json:"about,omitempty"`
	Skills       []string          `json:"skills,omitempty"`
	Education    []Education       `json:"education,omitempty"`
	Projects     []Project         `json:"projects,omitempty"`
	Resume       string            `json:"resume,omitempty"`
	ProfileImage string            `json:"profileImage,omitempty"`
	Avatar       string            `json:"avatar,omitempty"`
	AppliedJobs  []json.RawMessage `json:"appliedJobs,omitempty"`
	IsSuspicious bool              `json:"isSuspicious"`
}

// DisplayName falls back to a placeholder for users without a name
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return "Unnamed User"
}

// Image returns the best available picture URL
func (u User) Image() string {
	if u.ProfileImage != "" {
		return u.ProfileImage
	}
	return u.Avatar
}

// CategoryCount is one slice of the jobs-by-category breakdown
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// JobApplicants is one bar of the applications-per-job breakdown
type JobApplicants struct {
	JobTitle string `json:"jobTitle"`
	Count    int    `json:"count"`
}

// DashboardStats holds the aggregate counters shown on the dashboard
type DashboardStats struct {
	TotalUsers         int             `json:"totalUsers"`
	TotalJobs          int             `json:"totalJobs"`
	TotalApplications  int             `json:"totalApplications"`
	OpenJobs           int             `json:"openJobs"`
	ClosedJobs         int             `json:"closedJobs"`
	JobCategories      []CategoryCount `json:"jobCategories"`
	ApplicationsPerJob []JobApplicants `json:"applicationsPerJob"`
}

// JobPage is one server-side page of jobs
type JobPage struct {
	Jobs       []Job `json:"jobs"`
	TotalPages int   `json:"totalPages"`
}

// ApplicationPage is one server-side page of applications
type ApplicationPage struct {
	Applications []Application `json:"applications"`
	TotalPages   int           `json:"totalPages"`
}
