package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fiitjobs/jobadmin/internal/models"
)

// DefaultPageSize matches the page size the backend lists use
const DefaultPageSize = 10

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	return url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
}

// DashboardStats returns the aggregate counters for the dashboard
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var resp struct {
		Stats models.DashboardStats `json:"stats"`
	}
	err := c.do(ctx, request{
		op:        "dashboard stats",
		method:    http.MethodGet,
		path:      "/admin/dashboard/stats",
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// ListJobs returns one server-side page of jobs
func (c *Client) ListJobs(ctx context.Context, page, limit int) (*models.JobPage, error) {
	var resp models.JobPage
	err := c.do(ctx, request{
		op:        "list jobs",
		method:    http.MethodGet,
		path:      "/jobs",
		query:     pageQuery(page, limit),
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.TotalPages < 1 {
		resp.TotalPages = 1
	}
	return &resp, nil
}

// GetJob returns a single job. The backend answers with either the bare job
// or {"job": ...}.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		op:        "get job",
		method:    http.MethodGet,
		path:      "/jobs/" + url.PathEscape(id),
		protected: true,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Job *models.Job `json:"job"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Job != nil {
		return wrapped.Job, nil
	}

	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("get job: failed to decode response: %w", err)
	}
	return &job, nil
}

// CreateJob posts a new job as multipart form data, with an optional company image
func (c *Client) CreateJob(ctx context.Context, form models.JobForm, image *models.Upload) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"companyName", form.CompanyName},
		{"title", form.Title},
		{"description", form.Description},
		{"location", form.Location},
		{"salary", form.Salary},
		{"jobType", form.JobType},
		{"experience", form.Experience},
		{"skills", form.Skills},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to encode form: %w", err)
		}
	}

	if image != nil && len(image.Content) > 0 {
		field := image.FieldName
		if field == "" {
			field = "companyImage"
		}
		part, err := w.CreateFormFile(field, image.FileName)
		if err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}
		if _, err := part.Write(image.Content); err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	return c.do(ctx, request{
		op:          "create job",
		method:      http.MethodPost,
		path:        "/jobs",
		body:        &buf,
		contentType: w.FormDataContentType(),
		protected:   true,
	}, nil)
}

// UpdateJob replaces a job's fields
func (c *Client) UpdateJob(ctx context.Context, id string, form models.JobForm) error {
	body, err := jsonBody(form)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "update job",
		method:      http.MethodPut,
		path:        "/jobs/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
		protected:   true,
	}, nil)
}

// DeleteJob removes a job
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:        "delete job",
		method:    http.MethodDelete,
		path:      "/jobs/" + url.PathEscape(id),
		protected: true,
	}, nil)
}

// ListApplications returns one server-side page of applications
func (c *Client) ListApplications(ctx context.Context, page, limit int) (*models.ApplicationPage, error) {
	var resp models.ApplicationPage
	err := c.do(ctx, request{
		op:        "list applications",
		method:    http.MethodGet,
		path:      "/admin/applications",
		query:     pageQuery(page, limit),
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.TotalPages < 1 {
		resp.TotalPages = 1
	}
	return &resp, nil
}

// UpdateApplicationStatus moves an application to status
func (c *Client) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	if !models.ValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status %q", status)
	}
	body, err := jsonBody(map[string]string{"status": status})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "update application status",
		method:      http.MethodPatch,
		path:        "/admin/applications/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
		protected:   true,
	}, nil)
}

// NotifyApplicant asks the backend to notify the applicant about their application
func (c *Client) NotifyApplicant(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:          "notify applicant",
		method:      http.MethodPost,
		path:        "/admin/applications/" + url.PathEscape(id) + "/notify",
		body:        bytes.NewReader([]byte("{}")),
		contentType: "application/json",
		protected:   true,
	}, nil)
}

// ListUsers returns all platform users
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	err := c.do(ctx, request{
		op:        "list users",
		method:    http.MethodGet,
		path:      "/admin/users",
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetUser returns a single user's details
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	err := c.do(ctx, request{
		op:        "get user",
		method:    http.MethodGet,
		path:      "/admin/users/" + url.PathEscape(id),
		protected: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: "get user", Status: http.StatusNotFound, Message: "User not found."}
	}
	return resp.User, nil
}

// DeleteUser removes a user
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:        "delete user",
		method:    http.MethodDelete,
		path:      "/admin/users/" + url.PathEscape(id),
		protected: true,
	}, nil)
}

// ToggleSuspicious flips a user's suspicious flag
func (c *Client) ToggleSuspicious(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:          "toggle suspicious",
		method:      http.MethodPatch,
		path:        "/admin/users/" + url.PathEscape(id) + "/toggle-suspicious",
		body:        bytes.NewReader([]byte("{}")),
		contentType: "application/json",
		protected:   true,
	}, nil)
}
