package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/models"
)

// @Summary Dashboard
// @Description Aggregate counters and breakdowns
// @Router /dashboard [get]
func (s *Server) dashboard(c *gin.Context) {
	stats, err := s.api.DashboardStats(c.Request.Context())
	if err != nil {
		s.screenError(c, "dashboard", "Dashboard", err, "Failed to load dashboard stats")
		return
	}

	s.screen(c, http.StatusOK, "dashboard", "Dashboard", "Platform overview", struct {
		Stats *models.DashboardStats
	}{stats})
}
