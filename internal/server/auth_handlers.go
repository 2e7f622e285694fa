package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/shell"
)

// LoginForm is the login screen submission
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type loginData struct {
	Email string
	Next  string
}

func (s *Server) renderLogin(c *gin.Context, status int, data loginData, errMsg string) {
	s.pages.render(c, status, "login", layoutBare, view{
		Layout: shell.Layout{Title: "Login"},
		Notice: c.Query("notice"),
		Error:  errMsg,
		Data:   data,
	})
}

// @Router /login [get]
func (s *Server) showLogin(c *gin.Context) {
	s.renderLogin(c, http.StatusOK, loginData{Next: c.Query("next")}, "")
}

// @Summary Log in
// @Description Exchanges email and password for a backend credential and starts the session
// @Accept x-www-form-urlencoded
// @Success 303
// @Failure 400 {string} string "Login page with inline error"
// @Failure 401 {string} string "Login page with inline error"
// @Router /login [post]
func (s *Server) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, loginData{Email: form.Email, Next: form.Next},
			"Please enter a valid email and password")
		return
	}

	_, err := s.api.Authenticate(c.Request.Context(), s.sessions, form.Email, form.Password)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", form.Email).Msg("Login failed")

		status := http.StatusUnauthorized
		if errors.Is(err, backend.ErrUnreachable) {
			status = http.StatusBadGateway
		}
		s.renderLogin(c, status, loginData{Email: form.Email, Next: form.Next},
			backend.UserMessage(err, "Invalid credentials or server error"))
		return
	}

	nonce, err := s.binding.Issue()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to bind console session")
		s.sessions.Logout()
		s.renderLogin(c, http.StatusInternalServerError, loginData{Email: form.Email, Next: form.Next},
			"Could not start a console session. Please try again.")
		return
	}
	guard.SetCookie(c, nonce)

	target := guard.SafeNext(form.Next, "")
	if target == "" {
		target = withParam(homePath, "notice", "Successfully logged in")
	}
	c.Redirect(http.StatusSeeOther, target)
}

// @Summary Log out
// @Description Clears the session and the persisted credential. Only the
// @Description browser holding the console cookie can log out.
// @Success 303
// @Router /logout [post]
func (s *Server) logout(c *gin.Context) {
	if s.binding.Matches(c.Request) {
		s.sessions.Logout()
	} else if s.binding.Bound() {
		s.logger.Warn().Msg("Logout without console binding ignored")
	}
	guard.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, loginPath)
}
