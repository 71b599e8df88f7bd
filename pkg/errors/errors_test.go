package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/contactsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "survey",
			ID:       "ada@example.com",
		}
		assert.Equal(t, "survey with ID ada@example.com not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("row", "rec123")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestGuardError(t *testing.T) {
	err := pkgerrors.NewGuardError("records", 5, 100)
	assert.Equal(t, "only got 5 total entries from records (minimum 100)", err.Error())
	assert.True(t, pkgerrors.IsGuardFailure(err))
	assert.True(t, pkgerrors.IsGuardFailure(fmt.Errorf("run aborted: %w", err)))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "min_snapshot_size",
			Message: "must be non-negative",
		}
		assert.Equal(t, "validation failed for field min_snapshot_size: must be non-negative", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		target     error
		want       bool
	}{
		{"rate limited", 429, pkgerrors.ErrRateLimited, true},
		{"not found", 404, pkgerrors.ErrNotFound, true},
		{"unauthorized", 401, pkgerrors.ErrAPIKeyInvalid, true},
		{"server error", 503, pkgerrors.ErrServiceUnavailable, true},
		{"bad request", 400, pkgerrors.ErrRateLimited, false},
		{"bad request is not unavailable", 400, pkgerrors.ErrServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("mailchimp", tt.statusCode, "boom")
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}

	t.Run("message", func(t *testing.T) {
		err := pkgerrors.NewAPIError("airtable", 422, "INVALID_VALUE_FOR_COLUMN")
		assert.Equal(t, "API error from airtable (status 422): INVALID_VALUE_FOR_COLUMN", err.Error())
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapAPI("airtable", 0, base)
		require.Error(t, err)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "API error from airtable: connection reset", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("mailchimp", "MAILCHIMP_API_KEY not set", pkgerrors.ErrAPIKeyRequired)
	assert.Equal(t, "configuration error in mailchimp: MAILCHIMP_API_KEY not set", err.Error())
	assert.True(t, pkgerrors.IsAPIKeyError(err))
}

func TestResourceError(t *testing.T) {
	base := pkgerrors.NewAPIError("airtable", 500, "internal")
	err := pkgerrors.WrapResource("patch", "row", "rec42", base)
	assert.Equal(t, "failed to patch row rec42: API error from airtable (status 500): internal", err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrServiceUnavailable)

	var apiErr *pkgerrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestWrapHelpersNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "targets.yaml", nil))
	assert.NoError(t, pkgerrors.WrapResource("create", "row", "", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "", nil))
	assert.NoError(t, pkgerrors.WrapAPI("mailchimp", 0, nil))
}

func TestWrapCanceled(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapCanceled("reconcile rows", nil))

	err := pkgerrors.WrapCanceled("reconcile rows", context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "reconcile rows: operation canceled: context canceled", err.Error())
}

func TestParseError(t *testing.T) {
	err := pkgerrors.WrapParse("yaml", "targets.yaml", errors.New("bad indent"))
	assert.Equal(t, "parse error in yaml file targets.yaml: bad indent", err.Error())
}
