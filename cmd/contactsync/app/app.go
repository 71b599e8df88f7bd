// Package app provides the application context and dependency management
// for the contactsync CLI: configuration, logging and the lazily built
// store clients.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/contactsync/internal/appcontext"
	"github.com/agentstation/contactsync/internal/backfill"
	"github.com/agentstation/contactsync/internal/sources/airtable"
	"github.com/agentstation/contactsync/internal/sources/mailchimp"
	"github.com/agentstation/contactsync/internal/sources/surveys"
	"github.com/agentstation/contactsync/pkg/authority"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/reconcile"
)

// App represents the contactsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// Store clients (lazy-initialized)
	mu      sync.Mutex
	records reconcile.RecordsStore
	list    reconcile.ListService
	surveys backfill.SurveySource
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App with configuration loaded from the environment.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// DryRun reports whether writes are suppressed.
func (a *App) DryRun() bool {
	return a.config.DryRun
}

// ReconcileOptions returns the pass options derived from configuration.
func (a *App) ReconcileOptions() []reconcile.Option {
	opts := []reconcile.Option{
		reconcile.WithDryRun(a.config.DryRun),
		reconcile.WithMinSnapshotSize(a.config.MinSnapshotSize),
	}
	if len(a.config.Authority) > 0 {
		opts = append(opts, reconcile.WithAuthority(authority.New(a.config.Authority)))
	}
	return opts
}

// RecordsStore returns the Airtable client, creating it on first use.
func (a *App) RecordsStore() (reconcile.RecordsStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.records != nil {
		return a.records, nil
	}
	cfg, err := a.config.AirtableConfig()
	if err != nil {
		return nil, err
	}
	client, err := airtable.NewClient(cfg)
	if err != nil {
		return nil, errors.WrapResource("create", "client", airtable.ServiceName, err)
	}
	a.records = client
	return client, nil
}

// ListService returns the Mailchimp client, creating it on first use.
func (a *App) ListService() (reconcile.ListService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.list != nil {
		return a.list, nil
	}
	cfg, err := a.config.MailchimpConfig()
	if err != nil {
		return nil, err
	}
	client, err := mailchimp.NewClient(cfg)
	if err != nil {
		return nil, errors.WrapResource("create", "client", mailchimp.ServiceName, err)
	}
	a.list = client
	return client, nil
}

// SurveySource returns the DynamoDB survey store, creating it on first use.
func (a *App) SurveySource(ctx context.Context) (backfill.SurveySource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.surveys != nil {
		return a.surveys, nil
	}
	cfg, err := a.config.SurveyConfig()
	if err != nil {
		return nil, err
	}
	store, err := surveys.NewStore(ctx, cfg)
	if err != nil {
		return nil, errors.WrapResource("create", "client", surveys.ServiceName, err)
	}
	a.surveys = store
	return store, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRecordsStore sets the Records Store client (useful for testing).
func WithRecordsStore(records reconcile.RecordsStore) Option {
	return func(a *App) error {
		a.records = records
		return nil
	}
}

// WithListService sets the List Service client (useful for testing).
func WithListService(list reconcile.ListService) Option {
	return func(a *App) error {
		a.list = list
		return nil
	}
}

// WithSurveySource sets the survey store (useful for testing).
func WithSurveySource(source backfill.SurveySource) Option {
	return func(a *App) error {
		a.surveys = source
		return nil
	}
}
