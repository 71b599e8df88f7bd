package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/contactsync/internal/backfill"
	"github.com/agentstation/contactsync/pkg/reconcile"
)

// Mock provides a mock implementation of Interface for testing.
// Unset fields yield zero values.
type Mock struct {
	Log     *zerolog.Logger
	Records reconcile.RecordsStore
	List    reconcile.ListService
	Surveys backfill.SurveySource
	Options []reconcile.Option
	Dry     bool
	Err     error // returned by every client accessor when set
}

// Logger returns the mock logger or a disabled one.
func (m *Mock) Logger() *zerolog.Logger {
	if m.Log != nil {
		return m.Log
	}
	nop := zerolog.Nop()
	return &nop
}

// RecordsStore returns the mock store.
func (m *Mock) RecordsStore() (reconcile.RecordsStore, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

// ListService returns the mock list.
func (m *Mock) ListService() (reconcile.ListService, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.List, nil
}

// SurveySource returns the mock survey source.
func (m *Mock) SurveySource(context.Context) (backfill.SurveySource, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Surveys, nil
}

// ReconcileOptions returns the mock pass options.
func (m *Mock) ReconcileOptions() []reconcile.Option {
	return m.Options
}

// DryRun returns the mock dry run flag.
func (m *Mock) DryRun() bool {
	return m.Dry
}

// Version returns a fixed version.
func (m *Mock) Version() string {
	return "test"
}

var _ Interface = (*Mock)(nil)
