// Package contacts defines the two entity types reconciled by contactsync,
// the Records Store contact row and the List Service subscriber, together
// with the helpers both sides use to compare them: email normalization,
// name split/join and order-sensitive tag equality.
package contacts

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is a List Service subscription status.
type Status string

// Known subscriber statuses. Unknown values coming from the API are kept verbatim.
const (
	StatusSubscribed    Status = "subscribed"
	StatusPending       Status = "pending"
	StatusUnsubscribed  Status = "unsubscribed"
	StatusCleaned       Status = "cleaned"
	StatusArchived      Status = "archived"
	StatusTransactional Status = "transactional"
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// IsRemoved reports whether the subscriber bounced or was removed from the
// list. Removed subscribers are never re-imported as new rows.
func (s Status) IsRemoved() bool {
	return s == StatusCleaned || s == StatusArchived
}

// Row is a contact row in the Records Store.
type Row struct {
	ID           string
	Name         string
	Email        string // as typed, case preserved
	Tags         []string
	Status       Status
	AddToList    string // raw column value; only "Yes" opts in
	LastModified time.Time
	Survey       string
}

// Key returns the normalized email used to match the row.
func (r Row) Key() string {
	return NormalizeEmail(r.Email)
}

// RowPatch is a partial update of a Row. Nil fields are left unchanged.
type RowPatch struct {
	Name      *string
	Email     *string
	Status    *Status
	Tags      []string // nil leaves tags unchanged; empty clears them
	AddToList *string
	Survey    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p RowPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Status == nil && p.Tags == nil &&
		p.AddToList == nil && p.Survey == nil
}

// Subscriber is a member of a List Service mailing list.
type Subscriber struct {
	ID        string
	ListID    string
	Email     string // as received, case preserved
	FirstName string // FNAME merge field
	LastName  string // LNAME merge field
	Status    Status
	Tags      []string
}

// Key returns the normalized email used to match the subscriber.
func (s Subscriber) Key() string {
	return NormalizeEmail(s.Email)
}

// DisplayName joins the first and last merge fields with a space, omitting
// empty parts.
func (s Subscriber) DisplayName() string {
	return JoinName(s.FirstName, s.LastName)
}

// SubscriberPatch is a partial update of a Subscriber addressed by email hash.
// Tags are not patchable: the list owns them and rows only mirror its set.
type SubscriberPatch struct {
	FirstName *string
	LastName  *string
	Status    *Status
}

// IsEmpty reports whether the patch changes nothing.
func (p SubscriberPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Status == nil
}

// NormalizeEmail returns the lookup key for an email: trimmed and lower-cased.
// It is only ever used as a map key, never stored.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// SplitName splits a full name into its first word and the remainder.
func SplitName(full string) (first, rest string) {
	first, rest, _ = strings.Cut(full, " ")
	return first, rest
}

// JoinName joins name parts with a single space, skipping empty parts.
func JoinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// TagsEqual compares two tag lists element by element. Order matters; a nil
// list equals an empty one.
func TagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CloneTags returns a copy of tags that is never nil.
func CloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
