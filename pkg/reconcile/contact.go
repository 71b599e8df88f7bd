package reconcile

import (
	"context"

	"github.com/agentstation/contactsync/internal/utils/ptr"
	"github.com/agentstation/contactsync/pkg/authority"
	"github.com/agentstation/contactsync/pkg/contacts"
	"github.com/agentstation/contactsync/pkg/errors"
	"github.com/agentstation/contactsync/pkg/logging"
)

// syncContact aligns a matched row/subscriber pair. Changes bound for the
// same store are folded into a single write.
func (p *Pass) syncContact(ctx context.Context, key string, row contacts.Row, sub contacts.Subscriber, result *Result) error {
	var rowPatch contacts.RowPatch
	var subPatch contacts.SubscriberPatch

	ctx = logging.WithOperation(logging.WithEmail(ctx, key), "patch")
	logger := logging.FromContext(ctx)

	p.planName(ctx, key, row, sub, &rowPatch, &subPatch, result)
	p.planStatusAndTags(key, row, sub, &rowPatch, result)

	if !subPatch.IsEmpty() {
		logger.Info().
			Str("member_id", sub.ID).
			Bool("dry_run", p.opts.DryRun).
			Msg("Updating member name in list")
		if !p.opts.DryRun {
			if _, err := p.list.PatchSubscriber(ctx, sub.Email, subPatch); err != nil {
				return errors.WrapResource("patch", "subscriber", key, err)
			}
		}
	}

	if !rowPatch.IsEmpty() {
		logger.Info().
			Str("record_id", row.ID).
			Bool("dry_run", p.opts.DryRun).
			Msg("Updating record in records store")
		if !p.opts.DryRun {
			if _, err := p.records.PatchRow(ctx, row.ID, rowPatch); err != nil {
				return errors.WrapResource("patch", "row", row.ID, err)
			}
		}
	}

	return nil
}

// planName decides which way a name difference propagates. An empty side
// always receives the other side's name; when both are set and differ the
// authoritative store wins and the disagreement is recorded.
func (p *Pass) planName(ctx context.Context, key string, row contacts.Row, sub contacts.Subscriber, rowPatch *contacts.RowPatch, subPatch *contacts.SubscriberPatch, result *Result) {
	rowName := row.Name
	subName := sub.DisplayName()
	if rowName == subName {
		return
	}

	var from authority.Store
	switch {
	case rowName == "":
		from = authority.List
	case subName == "":
		from = authority.Records
	default:
		from = p.opts.Authority.Owner(authority.FieldName)
		result.NameConflicts = append(result.NameConflicts, NameConflict{
			Email:      key,
			RecordName: rowName,
			ListName:   subName,
			Winner:     from,
		})
	}

	switch from {
	case authority.List:
		rowPatch.Name = ptr.String(subName)
		result.RowNamesPatched++
		result.record(Action{Type: ActionPatchRowName, Email: key, RecordID: row.ID, Value: subName})
	default:
		first, last := contacts.SplitName(rowName)
		if rebuilt := contacts.JoinName(first, last); rebuilt != rowName {
			// The list echoes back rebuilt, so this pair differs again next run.
			logging.FromContext(ctx).Debug().
				Str("record_name", rowName).
				Str("list_name", rebuilt).
				Msg("Record name does not survive the first/last split")
		}
		subPatch.FirstName = ptr.String(first)
		subPatch.LastName = ptr.String(last)
		result.SubscriberNamesPatched++
		result.record(Action{Type: ActionPatchSubscriberName, Email: key, MemberID: sub.ID, Value: rowName})
	}
}

// planStatusAndTags mirrors the subscriber's status and tags onto the row.
// Tag lists compare order-sensitively.
func (p *Pass) planStatusAndTags(key string, row contacts.Row, sub contacts.Subscriber, rowPatch *contacts.RowPatch, result *Result) {
	if row.Status == sub.Status && contacts.TagsEqual(row.Tags, sub.Tags) {
		return
	}

	rowPatch.Status = ptr.To(sub.Status)
	rowPatch.Tags = contacts.CloneTags(sub.Tags)
	result.RowsStatusPatched++
	result.record(Action{Type: ActionPatchRowStatus, Email: key, RecordID: row.ID, Value: string(sub.Status)})
}
