// Package session holds the console's single authoritative admin session.
//
// A Context is either Anonymous (no credential) or Authenticated (credential
// plus display identity). It changes only through Login, Logout and
// InvalidateIfCurrent, and observers are notified synchronously, in
// registration order, before the mutating call returns.
//
// Concurrent Login and Logout calls are last-write-wins: whichever completes
// last determines the resulting state. A 401 that arrives for a request issued
// under an older session must use InvalidateIfCurrent so it cannot clear a
// newer login.
package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fiitjobs/jobadmin/internal/credstore"
)

// State is the coarse session state consulted by the route guard
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Reason records why a session transition happened
type Reason string

const (
	ReasonLogin       Reason = "login"
	ReasonLogout      Reason = "logout"
	ReasonInvalidated Reason = "authorization_failure"
)

var ErrEmptyCredential = errors.New("credential must not be empty")

// Identity describes the admin for display only. It never drives authorization.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Label returns the best human-readable name for the identity
func (i Identity) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Session is the (credential, identity) pair. The zero value is Anonymous.
type Session struct {
	Credential string
	Identity   Identity
}

// State derives the session state from the presence of a credential
func (s Session) State() State {
	if s.Credential == "" {
		return Anonymous
	}
	return Authenticated
}

func (s Session) Authenticated() bool {
	return s.State() == Authenticated
}

// Event is delivered to observers after each transition
type Event struct {
	Previous Session
	Current  Session
	Reason   Reason
	Epoch    uint64
}

// Observer receives transition events. Observers may read the Context but
// must not call Login, Logout or InvalidateIfCurrent.
type Observer func(Event)

type subscription struct {
	id uint64
	fn Observer
}

// Context is the application-lifetime session holder
type Context struct {
	// mutate serializes transitions together with their notifications
	mutate sync.Mutex

	mu         sync.RWMutex
	current    Session
	epoch      uint64
	unverified bool

	observers []subscription
	nextID    uint64

	store  credstore.Store
	logger zerolog.Logger
}

// New creates a Context and rehydrates it from store. Any failure to read
// the store degrades to Anonymous.
func New(store credstore.Store, logger zerolog.Logger) *Context {
	if store == nil {
		store = credstore.NewMemoryStore()
	}

	c := &Context{
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
	}

	token, err := store.Load()
	switch {
	case err == nil && token != "":
		c.current = Session{Credential: token, Identity: IdentityFromToken(token)}
		c.unverified = true
		c.logger.Info().
			Str("identity", c.current.Identity.Label()).
			Msg("Session restored from credential store (unverified)")
	case err != nil && !errors.Is(err, credstore.ErrNotFound):
		c.logger.Warn().Err(err).Msg("Failed to read credential store - starting anonymous")
	}

	return c
}

// Current returns the current session. It never fails.
func (c *Context) Current() Session {
	if c == nil {
		return Session{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Snapshot returns the current session together with its epoch.
// The epoch changes on every transition.
func (c *Context) Snapshot() (Session, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.epoch
}

// Epoch returns the transition counter
func (c *Context) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Unverified reports whether the credential was restored from storage and
// no protected request has succeeded with it yet.
func (c *Context) Unverified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unverified && c.current.Authenticated()
}

// Login replaces the session with (credential, identity) and persists the credential
func (c *Context) Login(credential string, identity Identity) error {
	if credential == "" {
		return ErrEmptyCredential
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	if err := c.store.Save(credential); err != nil {
		// Best effort: keep working in memory for the rest of the process lifetime
		c.logger.Warn().Err(err).Msg("Failed to persist credential")
	}

	c.transition(Session{Credential: credential, Identity: identity}, ReasonLogin)
	return nil
}

// Logout clears the session and the credential store. It is idempotent.
func (c *Context) Logout() {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	c.clearLocked(ReasonLogout)
}

// InvalidateIfCurrent clears the session after an authorization failure,
// unless another transition happened since epoch. Reports whether it cleared.
func (c *Context) InvalidateIfCurrent(epoch uint64) bool {
	c.mutate.Lock()
	defer c.mutate.Unlock()

	if c.Epoch() != epoch {
		c.logger.Debug().
			Uint64("request_epoch", epoch).
			Msg("Ignoring authorization failure from a previous session")
		return false
	}

	c.clearLocked(ReasonInvalidated)
	return true
}

// Confirm marks a restored credential as accepted by the backend
func (c *Context) Confirm(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.unverified = false
	}
}

// Subscribe registers an observer and returns a function that removes it
func (c *Context) Subscribe(fn Observer) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, subscription{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, sub := range c.observers {
				if sub.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// clearLocked requires c.mutate to be held
func (c *Context) clearLocked(reason Reason) {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear persisted credential")
	}

	if !c.Current().Authenticated() {
		return
	}

	c.transition(Session{}, reason)
}

// transition requires c.mutate to be held
func (c *Context) transition(next Session, reason Reason) {
	c.mu.Lock()
	prev := c.current
	c.current = next
	c.epoch++
	c.unverified = false
	epoch := c.epoch
	observers := make([]subscription, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	c.logger.Info().
		Str("from", prev.State().String()).
		Str("to", next.State().String()).
		Str("reason", string(reason)).
		Uint64("epoch", epoch).
		Msg("Session transition")

	event := Event{Previous: prev, Current: next, Reason: reason, Epoch: epoch}
	for _, sub := range observers {
		sub.fn(event)
	}
}
