package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/guard"
)

// ViewportReport is the resize beacon the browser posts
type ViewportReport struct {
	Width int `json:"width" binding:"required,min=1"`
}

// ShellState is the chrome state after a viewport report
type ShellState struct {
	Width           int  `json:"width"`
	Compact         bool `json:"compact"`
	SidebarExpanded bool `json:"sidebar_expanded"`
}

func (s *Server) shellState() ShellState {
	return ShellState{
		Width:           s.viewport.Width(),
		Compact:         s.shell.Compact(),
		SidebarExpanded: s.shell.SidebarExpanded(),
	}
}

// @Summary Report viewport width
// @Accept json
// @Produce json
// @Param request body ViewportReport true "Viewport width"
// @Success 200 {object} ShellState
// @Failure 400 {object} map[string]interface{}
// @Router /ui/viewport [post]
func (s *Server) reportViewport(c *gin.Context) {
	var req ViewportReport
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.viewport.Resize(req.Width)
	c.JSON(http.StatusOK, s.shellState())
}

// @Summary Toggle the navigation panel
// @Success 303
// @Router /ui/sidebar/toggle [post]
func (s *Server) toggleSidebar(c *gin.Context) {
	expanded := s.shell.ToggleSidebar()
	s.logger.Debug().Bool("expanded", expanded).Msg("Sidebar toggled")

	if wantsJSON(c) {
		c.JSON(http.StatusOK, s.shellState())
		return
	}
	c.Redirect(http.StatusSeeOther, guard.SafeNext(c.PostForm("return"), homePath))
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
