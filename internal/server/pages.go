package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/shell"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutChrome = "layout"
	layoutBare   = "bare"
)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"date": func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return "-"
		}
		return t.Local().Format("Jan 2, 2006")
	},
}

// pageSet holds one template per screen, each a clone of the shared layout
type pageSet struct {
	pages map[string]*template.Template
}

func loadPages() (*pageSet, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	set := &pageSet{pages: make(map[string]*template.Template)}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".html")
		if name == "layout" {
			continue
		}

		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		set.pages[name] = clone
	}

	return set, nil
}

// view is what every template receives
type view struct {
	Layout shell.Layout
	Notice string
	Alert  string // failed action, shown above the content
	Error  string // failed load, shown instead of the content
	Retry  string
	Data   any
}

// render executes page inside layout into a buffer first, so a template
// failure never leaves a half-written response.
func (p *pageSet) render(c *gin.Context, status int, page, layout string, v view) {
	tmpl, ok := p.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", page)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layout, v); err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// screen renders a protected page within the chrome
func (s *Server) screen(c *gin.Context, status int, page, title, subtitle string, data any) {
	s.pages.render(c, status, page, layoutChrome, view{
		Layout: s.shell.Layout(title, subtitle, c.Request.URL.Path, currentIdentity(c)),
		Notice: c.Query("notice"),
		Alert:  c.Query("error"),
		Data:   data,
	})
}

// supersededMessage reports a rejection of a credential that a newer login
// has already replaced
const supersededMessage = "The session changed while this request was running. Please try again."

// failure resolves the inline message and status for a backend error. ended
// is true when an authorization failure left the session anonymous; a
// rejection that raced a newer login leaves that login in place.
func (s *Server) failure(err error, fallback string) (msg string, status int, ended bool) {
	if backend.IsAuthorizationFailure(err) {
		if !s.sessions.Current().Authenticated() {
			return backend.UserMessage(err, fallback), statusFor(err), true
		}
		return supersededMessage, http.StatusConflict, false
	}
	return backend.UserMessage(err, fallback), statusFor(err), false
}

// screenError reports a failed load inline on the screen that issued it, with
// a retry link. When the failure ended the session the page drops the chrome
// and points back to login.
func (s *Server) screenError(c *gin.Context, page, title string, err error, fallback string) {
	s.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)

	msg, status, ended := s.failure(err, fallback)
	if ended {
		s.authFailed(c, status, msg)
		return
	}

	s.pages.render(c, status, page, layoutChrome, view{
		Layout: s.shell.Layout(title, "", c.Request.URL.Path, currentIdentity(c)),
		Error:  msg,
		Retry:  c.Request.URL.RequestURI(),
	})
}

// actionFailed reports a failed mutation back on the screen the form lives on
func (s *Server) actionFailed(c *gin.Context, err error, fallback, back string) {
	s.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)

	msg, status, ended := s.failure(err, fallback)
	if ended {
		s.authFailed(c, status, msg)
		return
	}

	c.Redirect(http.StatusSeeOther, withParam(back, "error", msg))
}

// authFailed renders the bare "Session ended" page linking back to login
func (s *Server) authFailed(c *gin.Context, status int, msg string) {
	loginURL := loginPath
	if c.Request.Method == http.MethodGet {
		loginURL = guard.LoginURL(loginPath, c.Request)
	}

	s.pages.render(c, status, "error", layoutBare, view{
		Layout: shell.Layout{Title: "Session ended"},
		Error:  msg,
		Data:   struct{ LoginURL string }{loginURL},
	})
}

// succeeded redirects back to the screen the action came from with a notice
func succeeded(c *gin.Context, back, notice string) {
	c.Redirect(http.StatusSeeOther, withParam(back, "notice", notice))
}

// withParam sets key on a local URL, dropping any earlier notice or error
func withParam(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Del("notice")
	q.Del("error")
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
