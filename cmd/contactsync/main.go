// Package main provides the entry point for the contactsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/contactsync/cmd/contactsync/app"
)

// Version information set with -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Logger().Error().Err(err).Msg("Run failed")
		cancel()
		os.Exit(1)
	}
}
