// Package reconcile implements the two-directional reconciliation pass between
// the Records Store and the List Service.
//
// Both snapshots are keyed by normalized email. Rows without a subscriber are
// pushed to the list when they opted in, subscribers without a row are
// imported unless they were cleaned or archived, and matched pairs have their
// name, status and tags aligned according to the authority policy.
package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/agentstation/contactsync/pkg/authority"
	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/contacts"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/logging"
)

// RecordsStore is the Records Store contract consumed by the pass.
type RecordsStore interface {
	// FetchAll returns every row keyed by normalized email.
	FetchAll(ctx context.Context) (map[string]contacts.Row, error)
	CreateRow(ctx context.Context, row contacts.Row) (contacts.Row, error)
	PatchRow(ctx context.Context, id string, patch contacts.RowPatch) (contacts.Row, error)
}

// ListService is the List Service contract consumed by the pass.
type ListService interface {
	// FetchAll returns every list member keyed by normalized email.
	FetchAll(ctx context.Context) (map[string]contacts.Subscriber, error)
	CreateSubscriber(ctx context.Context, sub contacts.Subscriber) (contacts.Subscriber, error)
	PatchSubscriber(ctx context.Context, email string, patch contacts.SubscriberPatch) (contacts.Subscriber, error)
}

// Pass reconciles one pair of snapshots. It holds no state between runs.
type Pass struct {
	records RecordsStore
	list    ListService
	opts    *Options
}

// New creates a Pass writing through the given store clients.
func New(records RecordsStore, list ListService, opts ...Option) (*Pass, error) {
	if records == nil || list == nil {
		return nil, &errors.ValidationError{
			Field:   "stores",
			Message: "both a records store and a list service are required",
		}
	}

	options := Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	return &Pass{records: records, list: list, opts: options}, nil
}

// FetchAndRun fetches complete snapshots from both stores and runs the pass.
func (p *Pass) FetchAndRun(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx)

	rows, err := p.records.FetchAll(ctx)
	if err != nil {
		return nil, errors.WrapResource("fetch", "rows", "", err)
	}
	subscribers, err := p.list.FetchAll(ctx)
	if err != nil {
		return nil, errors.WrapResource("fetch", "subscribers", "", err)
	}

	logger.Info().Int("count", len(rows)).Msgf("Got %d total records from the records store", len(rows))
	logger.Info().Int("count", len(subscribers)).Msgf("Got %d total members from the list service", len(subscribers))

	return p.Run(ctx, rows, subscribers)
}

// Run executes the pass over fully materialized snapshots. Any failed write
// aborts the run and is returned; writes already issued are not rolled back.
func (p *Pass) Run(ctx context.Context, rows map[string]contacts.Row, subscribers map[string]contacts.Subscriber) (*Result, error) {
	result := &Result{
		RecordsFetched:     len(rows),
		SubscribersFetched: len(subscribers),
		DryRun:             p.opts.DryRun,
		StartTime:          time.Now(),
	}
	defer result.finish()

	if err := p.guard(rows, subscribers); err != nil {
		return result, err
	}

	for _, key := range sortedKeys(rows) {
		if err := ctx.Err(); err != nil {
			return result, errors.WrapCanceled("reconcile rows", err)
		}

		row := rows[key]
		sub, ok := subscribers[key]
		if !ok {
			if err := p.addSubscriber(ctx, key, row, result); err != nil {
				return result, err
			}
			continue
		}
		if err := p.syncContact(ctx, key, row, sub, result); err != nil {
			return result, err
		}
	}

	for _, key := range sortedKeys(subscribers) {
		if err := ctx.Err(); err != nil {
			return result, errors.WrapCanceled("reconcile members", err)
		}
		if _, ok := rows[key]; ok {
			continue
		}
		if err := p.addRow(ctx, key, subscribers[key], result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// guard aborts the run before any write when a snapshot looks truncated.
func (p *Pass) guard(rows map[string]contacts.Row, subscribers map[string]contacts.Subscriber) error {
	if len(rows) < p.opts.MinSnapshotSize {
		return errors.NewGuardError(string(authority.Records), len(rows), p.opts.MinSnapshotSize)
	}
	if len(subscribers) < p.opts.MinSnapshotSize {
		return errors.NewGuardError(string(authority.List), len(subscribers), p.opts.MinSnapshotSize)
	}
	return nil
}

// addSubscriber pushes a row with no list counterpart, but only when the row
// explicitly opted in.
func (p *Pass) addSubscriber(ctx context.Context, key string, row contacts.Row, result *Result) error {
	if row.AddToList != constants.AddToListYes {
		result.SkippedNotOptedIn++
		return nil
	}

	first, last := contacts.SplitName(row.Name)
	sub := contacts.Subscriber{
		Email:     row.Email,
		FirstName: first,
		LastName:  last,
		Status:    contacts.StatusPending,
		Tags:      contacts.CloneTags(row.Tags),
	}

	ctx = logging.WithOperation(logging.WithEmail(ctx, key), "create")
	logging.FromContext(ctx).Info().
		Str("record_id", row.ID).
		Bool("dry_run", p.opts.DryRun).
		Msg("Adding record to list")

	result.record(Action{Type: ActionCreateSubscriber, Email: key, RecordID: row.ID})
	result.SubscribersCreated++
	if p.opts.DryRun {
		return nil
	}
	if _, err := p.list.CreateSubscriber(ctx, sub); err != nil {
		return errors.WrapResource("create", "subscriber", key, err)
	}
	return nil
}

// addRow imports a subscriber with no row counterpart unless it was removed
// from the list.
func (p *Pass) addRow(ctx context.Context, key string, sub contacts.Subscriber, result *Result) error {
	if sub.Status.IsRemoved() {
		result.SkippedRemoved++
		return nil
	}

	row := contacts.Row{
		Name:   sub.DisplayName(),
		Email:  sub.Email,
		Tags:   contacts.CloneTags(sub.Tags),
		Status: sub.Status,
	}

	ctx = logging.WithOperation(logging.WithEmail(ctx, key), "create")
	logging.FromContext(ctx).Info().
		Str("member_id", sub.ID).
		Bool("dry_run", p.opts.DryRun).
		Msg("Adding member to records")

	result.record(Action{Type: ActionCreateRow, Email: key, MemberID: sub.ID})
	result.RowsCreated++
	if p.opts.DryRun {
		return nil
	}
	if _, err := p.records.CreateRow(ctx, row); err != nil {
		return errors.WrapResource("create", "row", key, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
