// Package authority names which store is the source of truth for each
// logical contact field. The reconciliation pass asks this policy which way
// to propagate a difference instead of relying on branch order.
//
// Default policy: the Records Store is authoritative for the name, the List
// Service is authoritative for subscription status and tags.
package authority

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/agentstation/contactsync/pkg/errors"
)

// Store identifies one of the two reconciled systems.
type Store string

const (
	// Records is the spreadsheet-like records service (Airtable).
	Records Store = "records"
	// List is the email-marketing list service (Mailchimp).
	List Store = "list"
)

// Logical field paths.
const (
	FieldName   = "name"
	FieldStatus = "status"
	FieldTags   = "tags"
)

// Field defines source priority for a specific field
type Field struct {
	Path     string `json:"path" yaml:"path" mapstructure:"path"`             // e.g. "name", "status", "merge_fields.*"
	Source   Store  `json:"source" yaml:"source" mapstructure:"source"`       // Which store is authoritative
	Priority int    `json:"priority" yaml:"priority" mapstructure:"priority"` // Higher = more authoritative
}

// Authority determines which store is authoritative for each field
type Authority interface {
	// Owner returns the authoritative store for a field path. Fields without
	// a rule fall back to the Records Store.
	Owner(fieldPath string) Store
}

type authorities struct {
	fields []Field
}

// New creates an Authority from explicit field rules.
func New(fields []Field) Authority {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &authorities{fields: sorted}
}

// Default returns the production precedence policy.
func Default() Authority {
	return New(defaultFields())
}

// Owner returns the authoritative store for a field.
func (a *authorities) Owner(fieldPath string) Store {
	if f := ByField(fieldPath, a.fields); f != nil {
		return f.Source
	}
	return Records
}

// Validate checks field rules loaded from configuration.
func Validate(fields []Field) error {
	for i, f := range fields {
		if f.Path == "" {
			return errors.NewValidationError(fmt.Sprintf("authority[%d].path", i), f.Path, "path is required")
		}
		if _, err := filepath.Match(f.Path, ""); err != nil {
			return errors.NewValidationError(fmt.Sprintf("authority[%d].path", i), f.Path, "invalid pattern")
		}
		if f.Source != Records && f.Source != List {
			return errors.NewValidationError(fmt.Sprintf("authority[%d].source", i), f.Source, `source must be "records" or "list"`)
		}
	}
	return nil
}

// ByField returns the highest priority authority for a given field path
func ByField(fieldPath string, fields []Field) *Field {
	var bestMatch *Field
	var bestPriority int
	var bestMatchLength int

	for i, f := range fields {
		if !MatchesPattern(fieldPath, f.Path) {
			continue
		}
		// Prioritize by: 1) priority, 2) pattern specificity (length), 3) order
		patternLength := len(f.Path)
		if bestMatch == nil || f.Priority > bestPriority ||
			(f.Priority == bestPriority && patternLength > bestMatchLength) {
			bestMatch = &fields[i]
			bestPriority = f.Priority
			bestMatchLength = patternLength
		}
	}

	return bestMatch
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}

func defaultFields() []Field {
	return []Field{
		// The row name is curated by hand; the list only ever echoes it back.
		{Path: FieldName, Source: Records, Priority: 100},

		// Subscription state changes happen on the list (opt-in, bounce, unsubscribe).
		{Path: FieldStatus, Source: List, Priority: 100},
		{Path: FieldTags, Source: List, Priority: 100},
	}
}
