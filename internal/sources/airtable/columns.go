package airtable

import (
	"sort"
	"strings"

	"github.com/agentstation/contactsync/pkg/errors"
)

// Logical field names used as keys in the column mapping table.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldTags         = "tags"
	FieldStatus       = "status"
	FieldAddToList    = "add_to_list"
	FieldLastModified = "last_modified"
	FieldSurvey       = "survey"
)

// Columns maps each logical contact field to the column label used in the
// Airtable table. Labels are owned by whoever edits the base, so they live
// here rather than in the reconciliation logic.
type Columns struct {
	Name         string `yaml:"name" json:"name"`
	Email        string `yaml:"email" json:"email"`
	Tags         string `yaml:"tags" json:"tags"`
	Status       string `yaml:"status" json:"status"`
	AddToList    string `yaml:"add_to_list" json:"add_to_list"`
	LastModified string `yaml:"last_modified" json:"last_modified"`
	Survey       string `yaml:"survey" json:"survey"`
}

// DefaultColumns returns the labels of the production "Art World" table.
func DefaultColumns() Columns {
	return Columns{
		Name:         "Name (used in emails)",
		Email:        "Email",
		Tags:         "🔒 Mailchimp tags",
		Status:       "🔒 Mailchimp status",
		AddToList:    "Add to mailchimp?",
		LastModified: "🔒 Last Modified",
		Survey:       "🔒 Alpha survey",
	}
}

// fields returns pointers to every label keyed by logical field name.
func (c *Columns) fields() map[string]*string {
	return map[string]*string{
		FieldName:         &c.Name,
		FieldEmail:        &c.Email,
		FieldTags:         &c.Tags,
		FieldStatus:       &c.Status,
		FieldAddToList:    &c.AddToList,
		FieldLastModified: &c.LastModified,
		FieldSurvey:       &c.Survey,
	}
}

// Label returns the column label of a logical field, or "" if unknown.
func (c Columns) Label(field string) string {
	if p, ok := c.fields()[field]; ok {
		return *p
	}
	return ""
}

// WithOverrides returns a copy of c with labels replaced from overrides,
// keyed by logical field name. Unknown field names are rejected.
func (c Columns) WithOverrides(overrides map[string]string) (Columns, error) {
	out := c
	fields := out.fields()

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		label := strings.TrimSpace(overrides[key])
		p, ok := fields[strings.ToLower(key)]
		if !ok {
			return c, errors.NewValidationError("airtable.columns."+key, overrides[key], "unknown contact field")
		}
		if label != "" {
			*p = label
		}
	}
	return out, out.Validate()
}

// Validate checks that every label is set and no two fields share a column.
func (c Columns) Validate() error {
	seen := make(map[string]string)
	for _, field := range []string{FieldName, FieldEmail, FieldTags, FieldStatus, FieldAddToList, FieldLastModified, FieldSurvey} {
		label := c.Label(field)
		if label == "" {
			return errors.NewValidationError("airtable.columns."+field, label, "column label is required")
		}
		if other, dup := seen[label]; dup {
			return errors.NewValidationError("airtable.columns."+field, label, "column already mapped to "+other)
		}
		seen[label] = field
	}
	return nil
}
