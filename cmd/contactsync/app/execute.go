package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/contactsync/cmd/contactsync/cmd/backfill"
	"github.com/agentstation/contactsync/pkg/logging"
	"github.com/agentstation/contactsync/pkg/reconcile"
)

// Execute runs the contactsync CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "contactsync",
		Short:   "Reconcile the contacts table with the mailing list",
		Version: a.version,
		Long: `contactsync runs one reconciliation pass between the Airtable contacts
table and the Mailchimp audience, then exits.

Rows that opted in are added to the list as pending members, list members
missing from the table are imported, and names, statuses and tags of
contacts present in both are aligned.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE:              a.runSync,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.contactsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "log every decision without writing to either store")

	rootCmd.SetVersionTemplate("contactsync {{.Version}}\n")

	rootCmd.AddCommand(backfill.NewCommand(a))

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		config, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "dry-run"),
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	cmd.SetContext(logging.WithRunID(ctx))
	return nil
}

// runSync fetches both stores and runs one reconciliation pass.
func (a *App) runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	records, err := a.RecordsStore()
	if err != nil {
		return err
	}
	list, err := a.ListService()
	if err != nil {
		return err
	}

	pass, err := reconcile.New(records, list, a.ReconcileOptions()...)
	if err != nil {
		return err
	}

	result, err := pass.FetchAndRun(ctx)
	if result != nil {
		for _, c := range result.NameConflicts {
			logger.Warn().
				Str("email", c.Email).
				Str("record_name", c.RecordName).
				Str("list_name", c.ListName).
				Str("winner", string(c.Winner)).
				Msg("Name differs between stores")
		}
	}
	if err != nil {
		return err
	}

	logger.Info().
		Int("records", result.RecordsFetched).
		Int("members", result.SubscribersFetched).
		Dur("duration", result.Duration).
		Bool("dry_run", result.DryRun).
		Msg(result.Summary())
	return nil
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
