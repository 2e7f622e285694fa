package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiitjobs/jobadmin/internal/credstore"
	"github.com/fiitjobs/jobadmin/internal/models"
	"github.com/fiitjobs/jobadmin/internal/session"
)

// authenticatedSession starts a session with token already logged in
func authenticatedSession(t *testing.T, token string) (*session.Context, credstore.Store) {
	t.Helper()
	store := credstore.NewMemoryStore()
	sess := session.New(store, zerolog.Nop())
	require.NoError(t, sess.Login(token, session.Identity{Email: "admin@fiit.test"}))
	return sess, store
}

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProtectedRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/admin/dashboard/stats", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"stats": map[string]any{"totalUsers": 3, "openJobs": 2},
		})
	}))
	defer srv.Close()

	sess, _ := authenticatedSession(t, "t1")
	client := New(srv.URL, sess)

	stats, err := client.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.OpenJobs)

	// The credential is read at request time, not cached
	require.NoError(t, sess.Login("t2", session.Identity{Email: "admin@fiit.test"}))
	_, err = client.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t2", gotAuth)
}

func TestProtectedRequest_AnonymousSendsNoHeader(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Values("Authorization")
		w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.New(credstore.NewMemoryStore(), zerolog.Nop()))

	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAuthorizationFailure_ClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := statusServer(t, status, `{"message":"Token expired"}`)
			sess, store := authenticatedSession(t, "t1")
			client := New(srv.URL, sess)

			_, err := client.ListUsers(context.Background())

			require.Error(t, err)
			assert.True(t, IsAuthorizationFailure(err))
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, status, apiErr.Status)
			assert.NotEmpty(t, UserMessage(err, "Failed to load users."))

			assert.Equal(t, session.Anonymous, sess.Current().State())
			_, loadErr := store.Load()
			assert.ErrorIs(t, loadErr, credstore.ErrNotFound)
		})
	}
}

func TestNonAuthorizationFailure_KeepsSession(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "validation error", status: http.StatusBadRequest},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(t, tt.status, `{"error":"boom"}`)
			sess, store := authenticatedSession(t, "t1")
			client := New(srv.URL, sess)

			err := client.DeleteJob(context.Background(), "j1")

			require.Error(t, err)
			assert.False(t, IsAuthorizationFailure(err))
			assert.Equal(t, "t1", sess.Current().Credential)
			token, loadErr := store.Load()
			require.NoError(t, loadErr)
			assert.Equal(t, "t1", token)
		})
	}
}

func TestNetworkFailure_KeepsSession(t *testing.T) {
	srv := statusServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	sess, _ := authenticatedSession(t, "t1")
	client := New(url, sess)

	_, err := client.ListJobs(context.Background(), 1, 10)

	require.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, "Could not reach the server. Please try again.", UserMessage(err, "fallback"))
	assert.Equal(t, "t1", sess.Current().Credential)
}

func TestStaleAuthorizationFailure_DoesNotClearNewerLogin(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess, _ := authenticatedSession(t, "old")
	client := New(srv.URL, sess)

	done := make(chan error, 1)
	go func() {
		_, err := client.ListUsers(context.Background())
		done <- err
	}()

	<-started
	require.NoError(t, sess.Login("new", session.Identity{Email: "admin@fiit.test"}))
	close(release)

	err := <-done
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "new", sess.Current().Credential)
}

func TestSuccessfulRequest_ConfirmsRestoredSession(t *testing.T) {
	srv := statusServer(t, http.StatusOK, `{"users":[{"_id":"u1","name":"Ann"}]}`)

	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save("restored"))
	sess := session.New(store, zerolog.Nop())
	require.True(t, sess.Unverified())

	users, err := New(srv.URL, sess).ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)
	assert.False(t, sess.Unverified())
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Password {
		case "secret":
			w.Write([]byte(`{"token":"jwt-abc"}`))
		case "no-token":
			w.Write([]byte(`{"message":"ok"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`))
		}
	}))
	defer srv.Close()

	sess := session.New(credstore.NewMemoryStore(), zerolog.Nop())
	client := New(srv.URL, sess)

	t.Run("success", func(t *testing.T) {
		identity, err := client.Authenticate(context.Background(), sess, "admin@fiit.test", "secret")
		require.NoError(t, err)
		assert.Equal(t, "admin@fiit.test", identity.Email)
		assert.Equal(t, session.Session{Credential: "jwt-abc", Identity: identity}, sess.Current())
	})

	t.Run("rejected", func(t *testing.T) {
		sess.Logout()
		_, err := client.Authenticate(context.Background(), sess, "admin@fiit.test", "wrong")
		require.ErrorIs(t, err, ErrAuthentication)
		assert.Equal(t, "Invalid credentials or server error", UserMessage(err, ""))
		assert.Equal(t, session.Anonymous, sess.Current().State())
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := client.Login(context.Background(), "admin@fiit.test", "no-token")
		require.ErrorIs(t, err, ErrAuthentication)
		assert.Contains(t, err.Error(), "invalid login response")
	})
}

func TestLoginResponse_Identity(t *testing.T) {
	resp := &LoginResponse{Token: "t", User: &LoginUser{Email: "real@fiit.test", Name: "Real", Role: "admin"}}
	assert.Equal(t, session.Identity{Email: "real@fiit.test", Name: "Real", Role: "admin"}, resp.Identity("typed@fiit.test"))

	bare := &LoginResponse{Token: "t"}
	assert.Equal(t, session.Identity{Email: "typed@fiit.test"}, bare.Identity("typed@fiit.test"))
}

func TestCreateJob_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Backend Engineer", r.FormValue("title"))
		assert.Equal(t, "go,sql", r.FormValue("skills"))

		file, header, err := r.FormFile("companyImage")
		if assert.NoError(t, err) {
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "logo.png", header.Filename)
			assert.Equal(t, "png-bytes", string(content))
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sess, _ := authenticatedSession(t, "t1")
	err := New(srv.URL, sess).CreateJob(context.Background(), models.JobForm{
		Title:  "Backend Engineer",
		Skills: "go,sql",
	}, &models.Upload{FileName: "logo.png", Content: []byte("png-bytes")})

	require.NoError(t, err)
}

func TestGetJob_BareAndWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/wrapped") {
			w.Write([]byte(`{"job":{"_id":"wrapped","title":"Wrapped"}}`))
			return
		}
		w.Write([]byte(`{"_id":"bare","title":"Bare","salary":1000}`))
	}))
	defer srv.Close()

	sess, _ := authenticatedSession(t, "t1")
	client := New(srv.URL, sess)

	job, err := client.GetJob(context.Background(), "bare")
	require.NoError(t, err)
	assert.Equal(t, "Bare", job.Title)
	assert.Equal(t, models.Text("1000"), job.Salary)

	job, err = client.GetJob(context.Background(), "wrapped")
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", job.Title)
}

func TestListApplications_PagingQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"applications":[{"_id":"a1","status":"pending"}]}`))
	}))
	defer srv.Close()

	sess, _ := authenticatedSession(t, "t1")
	page, err := New(srv.URL, sess).ListApplications(context.Background(), 3, 0)

	require.NoError(t, err)
	assert.Len(t, page.Applications, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestUpdateApplicationStatus_RejectsUnknownStatus(t *testing.T) {
	sess, _ := authenticatedSession(t, "t1")
	err := New("http://127.0.0.1:0", sess).UpdateApplicationStatus(context.Background(), "a1", "archived")
	assert.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "fallback"))
	assert.Equal(t, "Title is required", UserMessage(&APIError{Op: "x", Status: 400, Message: "Title is required"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{Op: "x", Status: 502, Message: "<html>bad gateway</html>"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes followed by two-byte runes puts byte 200 mid-rune
	body := strings.Repeat("a", 199) + strings.Repeat("č", 10)

	msg := errorMessage([]byte(body))

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("a", 199), msg)

	short := "Neplatná požiadavka"
	assert.Equal(t, short, errorMessage([]byte(short)))
	assert.Equal(t, "bad", errorMessage([]byte(`{"error":"bad"}`)))
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New("http://backend.test/api", nil, WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)

	// Options apply regardless of order
	c = New("http://backend.test/api", nil, WithTimeout(5*time.Second), WithHTTPClient(shared))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)

	// Without a timeout option the supplied client is used as is
	c = New("http://backend.test/api", nil, WithHTTPClient(shared))
	assert.Same(t, shared, c.httpClient)
}
