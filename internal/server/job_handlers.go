package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/listing"
	"github.com/fiitjobs/jobadmin/internal/models"
)

const (
	jobsPath      = "/admin/jobs"
	maxImageBytes = 5 << 20
)

type jobsData struct {
	Jobs   []models.Job
	Query  string
	Pager  listing.Pager
	Return string
}

type jobFormData struct {
	Form      models.JobForm
	Errors    map[string]string
	FormError string
	Action    string
	Editing   bool
}

// @Summary Manage jobs
// @Param page query int false "Page number"
// @Param q query string false "Filter the current page by title, location or company"
// @Router /admin/jobs [get]
func (s *Server) listJobs(c *gin.Context) {
	page := pageParam(c)
	result, err := s.api.ListJobs(c.Request.Context(), page, backend.DefaultPageSize)
	if err != nil {
		s.screenError(c, "jobs", "Manage Jobs", err, "Failed to load jobs")
		return
	}

	query := c.Query("q")
	s.screen(c, http.StatusOK, "jobs", "Manage Jobs", "Search, edit and remove job postings", jobsData{
		Jobs:   listing.FilterJobs(result.Jobs, query),
		Query:  query,
		Pager:  listing.NewPager(page, result.TotalPages),
		Return: c.Request.URL.RequestURI(),
	})
}

// @Router /admin/jobs/add [get]
func (s *Server) newJob(c *gin.Context) {
	s.screen(c, http.StatusOK, "job_form", "Add Job", "Post a new job", jobFormData{
		Action: c.Request.URL.Path,
	})
}

// @Summary Create job
// @Accept multipart/form-data
// @Success 303
// @Failure 400 {string} string "Form with inline errors"
// @Router /admin/jobs/add [post]
func (s *Server) createJob(c *gin.Context) {
	form, fieldErrors := s.bindJobForm(c)
	data := jobFormData{Form: form, Errors: fieldErrors, Action: c.Request.URL.Path}
	if len(fieldErrors) > 0 {
		s.screen(c, http.StatusBadRequest, "job_form", "Add Job", "Post a new job", data)
		return
	}

	image, err := readUpload(c, "companyImage")
	if err != nil {
		data.FormError = err.Error()
		s.screen(c, http.StatusBadRequest, "job_form", "Add Job", "Post a new job", data)
		return
	}

	if err := s.api.CreateJob(c.Request.Context(), form, image); err != nil {
		s.formFailed(c, "Add Job", "Post a new job", data, err, "Failed to post job")
		return
	}

	s.logger.Info().Str("title", form.Title).Msg("Job created")
	succeeded(c, jobsPath, "Job posted successfully!")
}

// @Router /admin/jobs/{id} [get]
func (s *Server) jobDetails(c *gin.Context) {
	job, err := s.api.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.screenError(c, "job_details", "Job Details", err, "Failed to load job details")
		return
	}

	s.screen(c, http.StatusOK, "job_details", "Job Details", job.DisplayCompany(), struct {
		Job *models.Job
	}{job})
}

// @Router /admin/jobs/edit/{id} [get]
func (s *Server) editJob(c *gin.Context) {
	job, err := s.api.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.screenError(c, "job_form", "Edit Job", err, "Failed to load job data")
		return
	}

	s.screen(c, http.StatusOK, "job_form", "Edit Job", job.Title, jobFormData{
		Form:    models.JobFormFrom(*job),
		Action:  c.Request.URL.Path,
		Editing: true,
	})
}

// @Summary Update job
// @Success 303
// @Failure 400 {string} string "Form with inline errors"
// @Router /admin/jobs/edit/{id} [post]
func (s *Server) updateJob(c *gin.Context) {
	form, fieldErrors := s.bindJobForm(c)
	data := jobFormData{Form: form, Errors: fieldErrors, Action: c.Request.URL.Path, Editing: true}
	if len(fieldErrors) > 0 {
		s.screen(c, http.StatusBadRequest, "job_form", "Edit Job", form.Title, data)
		return
	}

	if err := s.api.UpdateJob(c.Request.Context(), c.Param("id"), form); err != nil {
		s.formFailed(c, "Edit Job", form.Title, data, err, "Failed to update job")
		return
	}

	s.logger.Info().Str("job_id", c.Param("id")).Msg("Job updated")
	succeeded(c, jobsPath, "Job updated successfully!")
}

// @Summary Delete job
// @Success 303
// @Router /admin/jobs/{id}/delete [post]
func (s *Server) deleteJob(c *gin.Context) {
	back := guard.SafeNext(c.PostForm("return"), jobsPath)
	if err := s.api.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		s.actionFailed(c, err, "Failed to delete job", back)
		return
	}

	s.logger.Info().Str("job_id", c.Param("id")).Msg("Job deleted")
	succeeded(c, back, "Job deleted successfully")
}

// bindJobForm reads and validates the job form, returning per-field messages
func (s *Server) bindJobForm(c *gin.Context) (models.JobForm, map[string]string) {
	var form models.JobForm
	if err := c.ShouldBind(&form); err != nil {
		return form, map[string]string{"Title": "Could not read the submitted form"}
	}
	form.Trim()

	err := s.validator.Struct(form)
	if err == nil {
		return form, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return form, map[string]string{"Title": err.Error()}
	}

	messages := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages[fe.Field()] = "This field is required"
		case "numeric":
			messages[fe.Field()] = "Must be a number"
		default:
			messages[fe.Field()] = fmt.Sprintf("Invalid value (%s)", fe.Tag())
		}
	}
	return form, messages
}

// formFailed re-renders a job form with the backend's error inline
func (s *Server) formFailed(c *gin.Context, title, subtitle string, data jobFormData, err error, fallback string) {
	s.logger.Warn().Err(err).Msg(fallback)

	msg, status, ended := s.failure(err, fallback)
	if ended {
		s.authFailed(c, status, msg)
		return
	}

	data.FormError = msg
	s.screen(c, status, "job_form", title, subtitle, data)
}

// readUpload returns the optional file field, or nil when none was sent
func readUpload(c *gin.Context, field string) (*models.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", field, err)
	}
	if header.Size > maxImageBytes {
		return nil, fmt.Errorf("image is too large (max %d MB)", maxImageBytes>>20)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", field, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", field, err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	return &models.Upload{FieldName: field, FileName: header.Filename, Content: content}, nil
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
