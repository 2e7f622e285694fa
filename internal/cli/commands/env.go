package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/config"
	"github.com/fiitjobs/jobadmin/internal/credstore"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/logger"
	"github.com/fiitjobs/jobadmin/internal/models"
	"github.com/fiitjobs/jobadmin/internal/session"
)

// API is the part of the backend client the commands use
type API interface {
	Authenticate(ctx context.Context, sessions backend.SessionLogin, email, password string) (session.Identity, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ListJobs(ctx context.Context, page, limit int) (*models.JobPage, error)
	DeleteJob(ctx context.Context, id string) error
	ListApplications(ctx context.Context, page, limit int) (*models.ApplicationPage, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) error
	NotifyApplicant(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ToggleSuspicious(ctx context.Context, id string) error
}

// Env is everything a command needs, built once per process before the
// command runs. Tests fill it in directly.
type Env struct {
	Version  string
	Config   *config.Config
	Logger   zerolog.Logger
	Store    credstore.Store
	Sessions *session.Context
	Client   *backend.Client
	API      API

	// Interactive reports whether prompts can be shown
	Interactive func() bool
}

// Init loads configuration and wires the session core. logLevel overrides
// LOG_LEVEL when set.
func (e *Env) Init(logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	store, err := credstore.Open(cfg.Session.Store, cfg.Session.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	sessions := session.New(store, log)
	client := backend.New(cfg.Backend.URL, sessions,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(log),
	)

	e.Config = cfg
	e.Logger = log
	e.Store = store
	e.Sessions = sessions
	e.Client = client
	e.API = client
	return nil
}

// Close releases the credential store
func (e *Env) Close() error {
	if closer, ok := e.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (e *Env) interactive() bool {
	if e.Interactive != nil {
		return e.Interactive()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// requireSession is the command-line counterpart of the console's route
// guard: nothing protected is requested while anonymous.
func (e *Env) requireSession() error {
	if decision, _ := guard.Evaluate(e.Sessions); decision == guard.Deny {
		return fmt.Errorf("not logged in. Please run 'jobadmin login' first")
	}
	return nil
}

// describe turns a backend error into a command error
func describe(err error, fallback string) error {
	msg := backend.UserMessage(err, fallback)
	if backend.IsAuthorizationFailure(err) {
		return fmt.Errorf("%s\nRun 'jobadmin login' to sign in again", msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
