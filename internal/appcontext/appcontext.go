// Package appcontext provides the application context interface shared by
// the CLI commands, so commands depend on an interface rather than the
// concrete App.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/contactsync/internal/backfill"
	"github.com/agentstation/contactsync/pkg/reconcile"
)

// Interface defines the dependencies commands need.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// RecordsStore returns the Records Store client, building it on first use.
	RecordsStore() (reconcile.RecordsStore, error)

	// ListService returns the List Service client, building it on first use.
	ListService() (reconcile.ListService, error)

	// SurveySource returns the survey store used by backfill.
	SurveySource(ctx context.Context) (backfill.SurveySource, error)

	// ReconcileOptions returns the pass options derived from configuration.
	ReconcileOptions() []reconcile.Option

	// DryRun reports whether writes are suppressed.
	DryRun() bool

	// Version returns the application version string.
	Version() string
}
