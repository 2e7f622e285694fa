// Package probe checks whether the session credential is still accepted by
// the backend, once at startup and optionally on a cron schedule.
//
// The probe is an ordinary protected request: a 401/403 clears the session
// through the backend client, and a network failure leaves it untouched.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/models"
	"github.com/fiitjobs/jobadmin/internal/session"
)

// Result is the outcome of one probe
type Result string

const (
	Skipped     Result = "skipped"     // anonymous, nothing to check
	Valid       Result = "valid"       // backend accepted the credential
	Invalidated Result = "invalidated" // backend rejected it, session cleared
	Unknown     Result = "unknown"     // backend unreachable or failing
)

const probeTimeout = 15 * time.Second

// Checker issues the protected request used as a probe
type Checker interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Sessions reports the state the probe needs
type Sessions interface {
	Current() session.Session
}

// Verify probes the current credential once
func Verify(ctx context.Context, sessions Sessions, checker Checker, log zerolog.Logger) Result {
	if !sessions.Current().Authenticated() {
		return Skipped
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := checker.DashboardStats(ctx)
	switch {
	case err == nil:
		log.Debug().Msg("Credential accepted by backend")
		return Valid
	case backend.IsAuthorizationFailure(err):
		log.Info().Err(err).Msg("Credential rejected by backend - session cleared")
		return Invalidated
	default:
		log.Warn().Err(err).Msg("Could not verify credential - keeping session")
		return Unknown
	}
}

// Scheduler repeats Verify on a cron schedule
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler parses a standard 5-field cron expression and registers the probe
func NewScheduler(expr string, sessions Sessions, checker Checker, log zerolog.Logger) (*Scheduler, error) {
	if expr == "" {
		return nil, errors.New("empty probe schedule")
	}

	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	_, err := c.AddFunc(expr, func() {
		result := Verify(context.Background(), sessions, checker, log)
		log.Debug().Str("result", string(result)).Msg("Scheduled credential probe")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", expr, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start runs the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running probe to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns when the probe runs next (zero before Start)
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
