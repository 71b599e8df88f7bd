// Package backfill copies alpha survey answers onto contact rows for a fixed
// list of people, creating rows for those not yet in the table.
package backfill

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/contactsync/internal/sources/surveys"
	"github.com/agentstation/contactsync/internal/utils/ptr"
	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/contacts"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/logging"
	"github.com/agentstation/contactsync/pkg/reconcile"
)

// SurveySource looks up a survey by email.
type SurveySource interface {
	Get(ctx context.Context, email string) (*surveys.Response, error)
}

// Target is one person to backfill.
type Target struct {
	Email string
	Name  string
}

// Result summarizes a backfill run.
type Result struct {
	Created []string
	Patched []string
	DryRun  bool
}

// LoadTargets reads an email to name mapping from a YAML or JSON file.
// Targets are returned sorted by email.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseTargets(data, path)
}

// ParseTargets decodes an email to name mapping. source is used in errors.
func ParseTargets(data []byte, source string) ([]Target, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}

	targets := make([]Target, 0, len(raw))
	for email, name := range raw {
		email = strings.TrimSpace(email)
		if email == "" {
			return nil, errors.NewValidationError("email", email, "target email is empty")
		}
		targets = append(targets, Target{Email: email, Name: strings.TrimSpace(name)})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Email < targets[j].Email })
	return targets, nil
}

// Run fetches every row, then for each target writes its formatted survey.
// A target without a survey aborts the run.
func Run(ctx context.Context, records reconcile.RecordsStore, source SurveySource, targets []Target, dryRun bool) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := &Result{DryRun: dryRun}

	rows, err := records.FetchAll(ctx)
	if err != nil {
		return result, errors.WrapResource("fetch", "rows", "", err)
	}
	logger.Info().Int("count", len(rows)).Msgf("Got %d total records from the records store", len(rows))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return result, errors.WrapCanceled("backfill", err)
		}

		resp, err := source.Get(ctx, target.Email)
		if err != nil {
			return result, errors.WrapResource("get", "survey", target.Email, err)
		}
		text := surveys.Format(resp)
		key := contacts.NormalizeEmail(target.Email)

		row, exists := rows[key]
		if !exists {
			createCtx := logging.WithOperation(logging.WithEmail(ctx, key), "create")
			logging.FromContext(createCtx).Info().Str("name", target.Name).Bool("dry_run", dryRun).Msg("Adding survey row")
			result.Created = append(result.Created, key)
			if dryRun {
				continue
			}
			if _, err := records.CreateRow(createCtx, contacts.Row{
				Name:      target.Name,
				Email:     target.Email,
				Survey:    text,
				AddToList: constants.AddToListYes,
			}); err != nil {
				return result, errors.WrapResource("create", "row", key, err)
			}
			continue
		}

		patchCtx := logging.WithOperation(logging.WithEmail(ctx, key), "patch")
		logging.FromContext(patchCtx).Info().Str("record_id", row.ID).Bool("dry_run", dryRun).Msg("Updating survey row")
		result.Patched = append(result.Patched, key)
		if dryRun {
			continue
		}
		if _, err := records.PatchRow(patchCtx, row.ID, contacts.RowPatch{
			Name:      ptr.String(target.Name),
			Email:     ptr.String(target.Email),
			Survey:    ptr.String(text),
			AddToList: ptr.String(constants.AddToListYes),
		}); err != nil {
			return result, errors.WrapResource("patch", "row", row.ID, err)
		}
	}

	return result, nil
}
