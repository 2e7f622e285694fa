package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiitjobs/jobadmin/internal/credstore"
)

// failingStore simulates unavailable local storage
type failingStore struct{}

func (failingStore) Save(string) error     { return errors.New("quota exceeded") }
func (failingStore) Load() (string, error) { return "", errors.New("storage unavailable") }
func (failingStore) Clear() error          { return errors.New("storage unavailable") }

func newContext(t *testing.T, store credstore.Store) *Context {
	t.Helper()
	return New(store, zerolog.Nop())
}

func TestLogout_Idempotent(t *testing.T) {
	store := credstore.NewMemoryStore()
	ctx := newContext(t, store)

	ctx.Logout()
	ctx.Logout()

	assert.Equal(t, Anonymous, ctx.Current().State())
	_, err := store.Load()
	assert.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestLogin_SetsBothFields(t *testing.T) {
	store := credstore.NewMemoryStore()
	ctx := newContext(t, store)
	identity := Identity{Email: "admin@fiit.test"}

	require.NoError(t, ctx.Login("t", identity))

	assert.Equal(t, Session{Credential: "t", Identity: identity}, ctx.Current())
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "t", token)
	assert.False(t, ctx.Unverified())
}

func TestLogin_RejectsEmptyCredential(t *testing.T) {
	ctx := newContext(t, credstore.NewMemoryStore())

	err := ctx.Login("", Identity{Email: "a@b.c"})

	assert.ErrorIs(t, err, ErrEmptyCredential)
	assert.Equal(t, Anonymous, ctx.Current().State())
}

func TestNew_Rehydration(t *testing.T) {
	t.Run("stored credential", func(t *testing.T) {
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Save("abc"))

		ctx := newContext(t, store)

		current := ctx.Current()
		assert.Equal(t, Authenticated, current.State())
		assert.Equal(t, "abc", current.Credential)
		assert.Equal(t, PlaceholderIdentity, current.Identity)
		assert.True(t, ctx.Unverified())
	})

	t.Run("empty store", func(t *testing.T) {
		ctx := newContext(t, credstore.NewMemoryStore())
		assert.Equal(t, Anonymous, ctx.Current().State())
		assert.False(t, ctx.Unverified())
	})

	t.Run("unreadable store", func(t *testing.T) {
		ctx := newContext(t, failingStore{})
		assert.Equal(t, Anonymous, ctx.Current().State())
	})
}

func TestPersistenceFailure_SessionStillWorks(t *testing.T) {
	ctx := newContext(t, failingStore{})

	require.NoError(t, ctx.Login("t1", Identity{Email: "a@b.c"}))
	assert.Equal(t, "t1", ctx.Current().Credential)

	ctx.Logout()
	assert.Equal(t, Anonymous, ctx.Current().State())
}

func TestObservers_NotifiedInRegistrationOrder(t *testing.T) {
	ctx := newContext(t, credstore.NewMemoryStore())

	var calls []string
	ctx.Subscribe(func(e Event) { calls = append(calls, "first:"+string(e.Reason)) })
	ctx.Subscribe(func(e Event) {
		// Observers see the new state already applied
		calls = append(calls, "second:"+ctx.Current().State().String())
	})

	require.NoError(t, ctx.Login("t", Identity{Email: "a@b.c"}))
	ctx.Logout()

	assert.Equal(t, []string{
		"first:login", "second:authenticated",
		"first:logout", "second:anonymous",
	}, calls)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	ctx := newContext(t, credstore.NewMemoryStore())

	count := 0
	unsubscribe := ctx.Subscribe(func(Event) { count++ })

	require.NoError(t, ctx.Login("t", Identity{}))
	unsubscribe()
	unsubscribe()
	ctx.Logout()

	assert.Equal(t, 1, count)
}

func TestLogout_WhenAnonymous_DoesNotNotify(t *testing.T) {
	ctx := newContext(t, credstore.NewMemoryStore())

	count := 0
	ctx.Subscribe(func(Event) { count++ })
	ctx.Logout()

	assert.Zero(t, count)
}

func TestInvalidateIfCurrent(t *testing.T) {
	store := credstore.NewMemoryStore()
	ctx := newContext(t, store)

	require.NoError(t, ctx.Login("t1", Identity{Email: "a@b.c"}))
	_, staleEpoch := ctx.Snapshot()

	// A newer login happens while the first request is in flight
	require.NoError(t, ctx.Login("t2", Identity{Email: "a@b.c"}))

	assert.False(t, ctx.InvalidateIfCurrent(staleEpoch))
	assert.Equal(t, "t2", ctx.Current().Credential)

	_, epoch := ctx.Snapshot()
	var reason Reason
	ctx.Subscribe(func(e Event) { reason = e.Reason })

	assert.True(t, ctx.InvalidateIfCurrent(epoch))
	assert.Equal(t, Anonymous, ctx.Current().State())
	assert.Equal(t, ReasonInvalidated, reason)
	_, err := store.Load()
	assert.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestConfirm(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Save("abc"))
	ctx := newContext(t, store)

	_, epoch := ctx.Snapshot()
	ctx.Confirm(epoch + 1)
	assert.True(t, ctx.Unverified())

	ctx.Confirm(epoch)
	assert.False(t, ctx.Unverified())
}

func TestConcurrentAccess(t *testing.T) {
	ctx := newContext(t, credstore.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ctx.Login("t", Identity{Email: "a@b.c"})
		}()
		go func() {
			defer wg.Done()
			ctx.Logout()
			_ = ctx.Current()
		}()
	}
	wg.Wait()

	// Last write wins: either state is valid, but it must be internally consistent
	current := ctx.Current()
	if current.Authenticated() {
		assert.Equal(t, "t", current.Credential)
	} else {
		assert.Equal(t, Session{}, current)
	}
}

func TestIdentityFromToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ops@fiit.test",
		"name":  "Ops",
		"role":  "admin",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, Identity{Email: "ops@fiit.test", Name: "Ops", Role: "admin"}, IdentityFromToken(signed))
	assert.Equal(t, PlaceholderIdentity, IdentityFromToken("opaque-token"))

	adminOnly, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":      "u1",
		"isAdmin": true,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, Identity{Email: "admin", Role: "admin"}, IdentityFromToken(adminOnly))
}
