package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/contactsync/pkg/authority"
)

// ActionType names a write decided by the pass.
type ActionType string

const (
	// ActionCreateSubscriber adds an opted-in row to the list.
	ActionCreateSubscriber ActionType = "create_subscriber"
	// ActionCreateRow imports a list member into the records store.
	ActionCreateRow ActionType = "create_row"
	// ActionPatchRowName copies the list name onto the row.
	ActionPatchRowName ActionType = "patch_row_name"
	// ActionPatchSubscriberName copies the row name onto the list member.
	ActionPatchSubscriberName ActionType = "patch_subscriber_name"
	// ActionPatchRowStatus mirrors list status and tags onto the row.
	ActionPatchRowStatus ActionType = "patch_row_status"
)

// Action is one decision taken for one contact.
type Action struct {
	Type     ActionType
	Email    string // normalized
	RecordID string
	MemberID string
	Value    string
}

// NameConflict records a pair whose names were both set and different.
type NameConflict struct {
	Email      string
	RecordName string
	ListName   string
	Winner     authority.Store
}

// Result summarizes one pass.
type Result struct {
	RecordsFetched     int
	SubscribersFetched int

	SubscribersCreated     int
	RowsCreated            int
	RowNamesPatched        int
	SubscriberNamesPatched int
	RowsStatusPatched      int

	SkippedNotOptedIn int // rows without a subscriber and without opt-in
	SkippedRemoved    int // cleaned/archived subscribers without a row

	NameConflicts []NameConflict
	Actions       []Action

	DryRun    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (r *Result) record(a Action) {
	r.Actions = append(r.Actions, a)
}

func (r *Result) finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// HasChanges returns true if the pass decided on any write.
func (r *Result) HasChanges() bool {
	return len(r.Actions) > 0
}

// Count returns the number of actions of the given type.
func (r *Result) Count(t ActionType) int {
	n := 0
	for _, a := range r.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if !r.HasChanges() {
		return fmt.Sprintf("No changes (%d records, %d members)", r.RecordsFetched, r.SubscribersFetched)
	}

	summary := fmt.Sprintf("%d members added, %d records added, %d record names, %d member names, %d record statuses updated",
		r.SubscribersCreated, r.RowsCreated, r.RowNamesPatched, r.SubscriberNamesPatched, r.RowsStatusPatched)

	var notes []string
	if len(r.NameConflicts) > 0 {
		notes = append(notes, fmt.Sprintf("%d name conflicts", len(r.NameConflicts)))
	}
	if r.DryRun {
		notes = append(notes, "dry run")
	}
	if len(notes) > 0 {
		summary += " (" + strings.Join(notes, ", ") + ")"
	}
	return summary
}
