package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiitjobs/jobadmin/internal/credstore"
	"github.com/fiitjobs/jobadmin/internal/session"
)

type panickingSource struct{}

func (panickingSource) Current() session.Session { panic("storage exploded") }

func newRouter(src Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/")
	protected.Use(Require(src, nil, "/login", zerolog.Nop()))
	protected.GET("/dashboard", func(c *gin.Context) {
		current, ok := SessionFrom(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session")
			return
		}
		c.String(http.StatusOK, "protected content for "+current.Identity.Email)
	})
	protected.POST("/jobs/:id/delete", func(c *gin.Context) {
		c.String(http.StatusOK, "deleted")
	})
	return r
}

func TestDecide(t *testing.T) {
	assert.Equal(t, Deny, Decide(session.Session{}))
	assert.Equal(t, Deny, Decide(session.Session{Identity: session.Identity{Email: "a@b.c"}}))
	assert.Equal(t, Allow, Decide(session.Session{Credential: "t"}))
}

func TestEvaluate_DefaultsToDeny(t *testing.T) {
	decision, _ := Evaluate(nil)
	assert.Equal(t, Deny, decision)

	decision, _ = Evaluate(panickingSource{})
	assert.Equal(t, Deny, decision)
}

func TestRequire_RedirectsAnonymous(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	router := newRouter(sess)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "protected content")
}

func TestRequire_RendersForAuthenticated(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sess.Login("t", session.Identity{Email: "admin@fiit.test"}))
	router := newRouter(sess)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "protected content for admin@fiit.test", w.Body.String())
}

func TestRequire_ReevaluatesEveryRequest(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sess.Login("t", session.Identity{Email: "admin@fiit.test"}))
	router := newRouter(sess)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	sess.Logout()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestRequire_NonGetAndJSON(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	router := newRouter(sess)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs/j1/delete", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
}

func TestRedirectIfAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	r := gin.New()
	r.GET("/login", RedirectIfAuthenticated(sess, nil, "/dashboard"), func(c *gin.Context) {
		c.String(http.StatusOK, "login form")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, sess.Login("t", session.Identity{}))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{next: "", want: "/dashboard"},
		{next: "/jobs?page=2", want: "/jobs?page=2"},
		{next: "https://evil.test", want: "/dashboard"},
		{next: "//evil.test", want: "/dashboard"},
		{next: "/\\evil.test", want: "/dashboard"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeNext(tt.next, "/dashboard"), tt.next)
	}
}

func newBoundRouter(src Source, binding *Binding) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/login", RedirectIfAuthenticated(src, binding, "/dashboard"), func(c *gin.Context) {
		c.String(http.StatusOK, "login form")
	})
	protected := r.Group("/")
	protected.Use(Require(src, binding, "/login", zerolog.Nop()))
	protected.GET("/dashboard", func(c *gin.Context) {
		c.String(http.StatusOK, "protected content")
	})
	return r
}

func withConsoleCookie(r *http.Request, value string) *http.Request {
	r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	return r
}

func TestRequire_DeniesRequestsWithoutConsoleCookie(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sess.Login("t", session.Identity{Email: "admin@fiit.test"}))
	binding := NewBinding()
	nonce, err := binding.Issue()
	require.NoError(t, err)
	router := newBoundRouter(sess, binding)

	tests := []struct {
		name   string
		cookie string
		want   int
	}{
		{name: "no cookie", want: http.StatusFound},
		{name: "wrong cookie", cookie: "0123abcd", want: http.StatusFound},
		{name: "matching cookie", cookie: nonce, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.cookie != "" {
				withConsoleCookie(req, tt.cookie)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.NotContains(t, w.Body.String(), "protected content")
			}
		})
	}
}

func TestRequire_RevokedBindingDenies(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sess.Login("t", session.Identity{}))
	binding := NewBinding()
	nonce, err := binding.Issue()
	require.NoError(t, err)
	router := newBoundRouter(sess, binding)

	binding.Revoke()
	assert.False(t, binding.Bound())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withConsoleCookie(httptest.NewRequest(http.MethodGet, "/dashboard", nil), nonce))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestBinding_IssueReplacesPreviousNonce(t *testing.T) {
	binding := NewBinding()
	first, err := binding.Issue()
	require.NoError(t, err)
	second, err := binding.Issue()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	assert.False(t, binding.Matches(withConsoleCookie(httptest.NewRequest(http.MethodGet, "/", nil), first)))
	assert.True(t, binding.Matches(withConsoleCookie(httptest.NewRequest(http.MethodGet, "/", nil), second)))
}

func TestRedirectIfAuthenticated_UnboundBrowserSeesLoginForm(t *testing.T) {
	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sess.Login("t", session.Identity{}))
	binding := NewBinding()
	nonce, err := binding.Issue()
	require.NoError(t, err)
	router := newBoundRouter(sess, binding)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login form", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, withConsoleCookie(httptest.NewRequest(http.MethodGet, "/login", nil), nonce))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}
