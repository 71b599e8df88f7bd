// Package logging provides structured logging for contactsync using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise, so a
// scheduled run produces machine-readable logs.
//
// Loggers travel on the context. Store clients and the reconciliation pass
// tag them with the store, operation and contact they act on:
//
//	ctx = logging.WithOperation(logging.WithStore(ctx, "airtable"), "patch")
//	logging.FromContext(ctx).Info().Str("record_id", id).Msg("Updating record")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger backs FromContext when no logger was attached. It starts out
// configured from LOG_* variables and is replaced once the CLI has parsed
// its flags.
var defaultLogger = NewLoggerFromConfig(envConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// isatty checks if stderr is a terminal.
func isatty() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
