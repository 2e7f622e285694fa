package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/listing"
	"github.com/fiitjobs/jobadmin/internal/models"
)

const usersPath = "/users"

// @Summary Users
// @Param q query string false "Filter by name or email"
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.api.ListUsers(c.Request.Context())
	if err != nil {
		s.screenError(c, "users", "Users", err, "Failed to load users")
		return
	}

	query := c.Query("q")
	s.screen(c, http.StatusOK, "users", "Users", "Manage platform accounts", struct {
		Users []models.User
		Query string
	}{listing.FilterUsers(users, query), query})
}

// @Router /admin/users/{id} [get]
func (s *Server) userDetails(c *gin.Context) {
	user, err := s.api.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.screenError(c, "user_details", "User Details", err, "Failed to load user details")
		return
	}

	s.screen(c, http.StatusOK, "user_details", "User Details", user.Email, struct {
		User *models.User
	}{user})
}

// @Summary Delete user
// @Success 303
// @Router /admin/users/{id}/delete [post]
func (s *Server) deleteUser(c *gin.Context) {
	if err := s.api.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		s.actionFailed(c, err, "Failed to delete user", usersPath)
		return
	}

	s.logger.Info().Str("user_id", c.Param("id")).Msg("User deleted")
	succeeded(c, usersPath, "User deleted successfully")
}

// @Summary Toggle suspicious flag
// @Success 303
// @Router /admin/users/{id}/toggle-suspicious [post]
func (s *Server) toggleSuspicious(c *gin.Context) {
	if err := s.api.ToggleSuspicious(c.Request.Context(), c.Param("id")); err != nil {
		s.actionFailed(c, err, "Failed to update user status", usersPath)
		return
	}

	s.logger.Info().Str("user_id", c.Param("id")).Msg("User suspicious flag toggled")
	succeeded(c, usersPath, "User status updated")
}
