// Package backfill provides the backfill command, which copies survey answers
// from DynamoDB onto contact rows.
package backfill

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/contactsync/internal/appcontext"
	"github.com/agentstation/contactsync/internal/backfill"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/logging"
)

// NewCommand creates the backfill command using app context.
func NewCommand(appCtx appcontext.Interface) *cobra.Command {
	var targetsFile string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Copy alpha survey answers onto contact rows",
		Long: `Backfill reads an email to name mapping from a YAML or JSON file, looks up
each person's survey in DynamoDB and writes the formatted answers onto
their row. People without a row get a new one marked for the list.

A missing survey aborts the run.`,
		Example: `  contactsync backfill --targets people.yaml
  contactsync backfill --targets people.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			targets, err := backfill.LoadTargets(targetsFile)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				return errors.NewValidationError("targets", targetsFile, "no targets found")
			}

			records, err := appCtx.RecordsStore()
			if err != nil {
				return err
			}
			source, err := appCtx.SurveySource(ctx)
			if err != nil {
				return err
			}

			result, err := backfill.Run(ctx, records, source, targets, appCtx.DryRun())
			if err != nil {
				return err
			}

			logger.Info().
				Int("created", len(result.Created)).
				Int("patched", len(result.Patched)).
				Bool("dry_run", result.DryRun).
				Msgf("Backfilled %d surveys", len(result.Created)+len(result.Patched))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetsFile, "targets", "", "YAML or JSON file mapping emails to names")
	_ = cmd.MarkFlagRequired("targets")

	return cmd
}
