// Package guard gates every protected console route behind the session.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fiitjobs/jobadmin/internal/session"
)

const sessionKey = "session"

// Source is anything that can report the current session
type Source interface {
	Current() session.Session
}

// Decision is the outcome of a guard check
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Decide is the guard policy: a credential is the sole signal of "authenticated"
func Decide(s session.Session) Decision {
	if s.Authenticated() {
		return Allow
	}
	return Deny
}

// Evaluate reads src and decides. If the session cannot be determined the
// answer is Deny.
func Evaluate(src Source) (decision Decision, current session.Session) {
	defer func() {
		if r := recover(); r != nil {
			decision, current = Deny, session.Session{}
		}
	}()

	if src == nil {
		return Deny, session.Session{}
	}

	current = src.Current()
	return Decide(current), current
}

// Require is middleware that redirects anonymous visitors to loginPath and
// aborts the chain. It is evaluated on every request; nothing is cached.
// With a non-nil binding the request must also carry the console cookie.
func Require(src Source, binding *Binding, loginPath string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, current := Evaluate(src)
		if decision == Allow && binding != nil && !binding.Matches(c.Request) {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Msg("Request without console binding - treating as anonymous")
			decision = Deny
		}

		if decision == Deny {
			log.Debug().
				Str("path", c.Request.URL.Path).
				Msg("Anonymous request to protected route - redirecting to login")

			if wantsJSON(c.Request) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}

			c.Redirect(redirectStatus(c.Request.Method), LoginURL(loginPath, c.Request))
			c.Abort()
			return
		}

		c.Set(sessionKey, current)
		c.Next()
	}
}

// RedirectIfAuthenticated sends an already authenticated visitor to home.
// A visitor the binding does not recognise gets the login form instead.
func RedirectIfAuthenticated(src Source, binding *Binding, home string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, _ := Evaluate(src)
		if decision == Allow && (binding == nil || binding.Matches(c.Request)) {
			c.Redirect(http.StatusFound, home)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session the guard admitted the request with
func SessionFrom(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// LoginURL builds the redirect target, remembering the requested page for GETs
func LoginURL(loginPath string, r *http.Request) string {
	if r.Method != http.MethodGet || r.URL.Path == loginPath {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

// SafeNext returns next when it is a local absolute path, fallback otherwise
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
