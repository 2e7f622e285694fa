package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/listing"
	"github.com/fiitjobs/jobadmin/internal/models"
)

const applicationsPath = "/applications"

type applicationsData struct {
	Applications []models.Application
	Statuses     []string
	Query        string
	Pager        listing.Pager
	Return       string
}

// StatusForm is the status change submission
type StatusForm struct {
	Status string `form:"status" validate:"required,appstatus"`
	Return string `form:"return"`
}

// @Summary Applications
// @Param page query int false "Page number"
// @Param q query string false "Filter the current page by applicant or job"
// @Router /applications [get]
func (s *Server) listApplications(c *gin.Context) {
	page := pageParam(c)
	result, err := s.api.ListApplications(c.Request.Context(), page, backend.DefaultPageSize)
	if err != nil {
		s.screenError(c, "applications", "Applications", err, "Failed to load applications")
		return
	}

	query := c.Query("q")
	s.screen(c, http.StatusOK, "applications", "Applications", "Review applicants and update their status", applicationsData{
		Applications: listing.FilterApplications(result.Applications, query),
		Statuses:     models.ApplicationStatuses,
		Query:        query,
		Pager:        listing.NewPager(page, result.TotalPages),
		Return:       c.Request.URL.RequestURI(),
	})
}

// @Summary Change application status
// @Success 303
// @Router /applications/{id}/status [post]
func (s *Server) updateApplicationStatus(c *gin.Context) {
	var form StatusForm
	bindErr := c.ShouldBind(&form)
	back := guard.SafeNext(form.Return, applicationsPath)

	if bindErr != nil {
		s.logger.Warn().Err(bindErr).Str("application_id", c.Param("id")).Msg("Failed to read status form")
		c.Redirect(http.StatusSeeOther, withParam(back, "error", "Could not read the submitted form. Please try again."))
		return
	}

	if err := s.validator.Struct(form); err != nil {
		c.Redirect(http.StatusSeeOther, withParam(back, "error", "Invalid application status"))
		return
	}

	if err := s.api.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), form.Status); err != nil {
		s.actionFailed(c, err, "Failed to update status", back)
		return
	}

	s.logger.Info().Str("application_id", c.Param("id")).Str("status", form.Status).Msg("Application status updated")
	succeeded(c, back, "Status updated to "+form.Status)
}

// @Summary Notify applicant
// @Success 303
// @Router /applications/{id}/notify [post]
func (s *Server) notifyApplicant(c *gin.Context) {
	back := guard.SafeNext(c.PostForm("return"), applicationsPath)
	if err := s.api.NotifyApplicant(c.Request.Context(), c.Param("id")); err != nil {
		s.actionFailed(c, err, "Failed to send notification", back)
		return
	}

	s.logger.Info().Str("application_id", c.Param("id")).Msg("Applicant notified")
	succeeded(c, back, "Notification sent")
}
