package guard

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// CookieName is the console cookie carrying the browser binding nonce
const CookieName = "jobadmin_console"

// Binding ties the process-wide session to the one browser that logged in
// through the console. Requests without the matching cookie are treated as
// anonymous even while the session holds a credential.
type Binding struct {
	mu    sync.RWMutex
	nonce string
}

// NewBinding creates a binding with no browser attached
func NewBinding() *Binding {
	return &Binding{}
}

// Issue generates a fresh nonce, replacing any previous one
func (b *Binding) Issue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate console nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	b.mu.Lock()
	b.nonce = nonce
	b.mu.Unlock()
	return nonce, nil
}

// Revoke detaches the bound browser
func (b *Binding) Revoke() {
	b.mu.Lock()
	b.nonce = ""
	b.mu.Unlock()
}

// Bound reports whether a browser is currently attached
func (b *Binding) Bound() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nonce != ""
}

// Matches reports whether r carries the current nonce
func (b *Binding) Matches(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	b.mu.RLock()
	nonce := b.nonce
	b.mu.RUnlock()

	if nonce == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(nonce)) == 1
}

// SetCookie hands nonce to the browser as an HttpOnly, SameSite=Strict cookie
func SetCookie(c *gin.Context, nonce string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, nonce, 0, "/", "", false, true)
}

// ClearCookie expires the console cookie
func ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
