package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/contactsync/pkg/logging"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logging.WithLogger(context.Background(), &logger)

	logging.FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logging.WithLogger(context.Background(), &logger)

	ctx = logging.WithRunID(ctx)
	id := logging.RunID(ctx)
	assert.Len(t, id, 36)

	logging.FromContext(ctx).Info().Msg("tagged")
	assert.Contains(t, buf.String(), `"run_id":"`+id+`"`)

	other := logging.RunID(logging.WithRunID(context.Background()))
	assert.NotEqual(t, id, other)
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logging.WithLogger(context.Background(), &logger)

	ctx = logging.WithStore(ctx, "airtable")
	ctx = logging.WithEmail(ctx, "ada@example.com")
	ctx = logging.WithOperation(ctx, "patch")

	logging.FromContext(ctx).Info().Msg("fields")
	out := buf.String()
	assert.Contains(t, out, `"store":"airtable"`)
	assert.Contains(t, out, `"email":"ada@example.com"`)
	assert.Contains(t, out, `"operation":"patch"`)
}
