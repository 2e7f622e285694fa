package server

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/session"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestIDMiddleware tags every request with a ULID, honouring one supplied by the caller
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := ulid.ParseStrict(id); err != nil {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// trustedHostMiddleware rejects requests whose Host is neither loopback nor
// one of hosts. This keeps DNS-rebound pages from talking to the console.
func trustedHostMiddleware(hosts []string) gin.HandlerFunc {
	trusted := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		trusted[strings.ToLower(hostOnly(h))] = true
	}

	return func(c *gin.Context) {
		host := strings.ToLower(hostOnly(c.Request.Host))
		if isLoopbackHost(host) || trusted[host] {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Untrusted host"})
	}
}

// consoleHosts lists the configured trusted hosts plus the listen host when it names one
func consoleHosts(listenAddr string, extra []string) []string {
	hosts := append([]string{}, extra...)
	host := hostOnly(listenAddr)
	if ip := net.ParseIP(host); host != "" && (ip == nil || !ip.IsUnspecified()) {
		hosts = append(hosts, host)
	}
	return hosts
}

// isLoopbackAddr reports whether a listen address only accepts local connections
func isLoopbackAddr(addr string) bool {
	return isLoopbackHost(hostOnly(addr))
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// hostOnly strips the port and IPv6 brackets from a host[:port] value
func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
}

// currentIdentity is the identity the guard admitted the request with
func currentIdentity(c *gin.Context) session.Identity {
	if s, ok := guard.SessionFrom(c); ok {
		return s.Identity
	}
	return session.Identity{}
}

// statusFor maps a backend failure onto the status of the page that reports it
func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
