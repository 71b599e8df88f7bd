package airtable

import (
	"fmt"
	"time"

	"github.com/agentstation/contactsync/pkg/contacts"
)

// record is an Airtable API record.
type record struct {
	ID          string         `json:"id,omitempty"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast"`
}

// toRow converts an API record into a typed Row using the column table.
func (c Columns) toRow(r record) contacts.Row {
	row := contacts.Row{
		ID:        r.ID,
		Name:      stringField(r.Fields[c.Name]),
		Email:     stringField(r.Fields[c.Email]),
		Tags:      stringsField(r.Fields[c.Tags]),
		Status:    contacts.Status(stringField(r.Fields[c.Status])),
		AddToList: stringField(r.Fields[c.AddToList]),
		Survey:    stringField(r.Fields[c.Survey]),
	}
	if ts := stringField(r.Fields[c.LastModified]); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			row.LastModified = t
		}
	}
	return row
}

// createFields renders the non-empty fields of a new row.
func (c Columns) createFields(row contacts.Row) map[string]any {
	fields := make(map[string]any)
	if row.Name != "" {
		fields[c.Name] = row.Name
	}
	if row.Email != "" {
		fields[c.Email] = row.Email
	}
	if row.Tags != nil {
		fields[c.Tags] = contacts.CloneTags(row.Tags)
	}
	if row.Status != "" {
		fields[c.Status] = string(row.Status)
	}
	if row.AddToList != "" {
		fields[c.AddToList] = row.AddToList
	}
	if row.Survey != "" {
		fields[c.Survey] = row.Survey
	}
	return fields
}

// patchFields renders only the fields set on a patch.
func (c Columns) patchFields(p contacts.RowPatch) map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields[c.Name] = *p.Name
	}
	if p.Email != nil {
		fields[c.Email] = *p.Email
	}
	if p.Tags != nil {
		fields[c.Tags] = contacts.CloneTags(p.Tags)
	}
	if p.Status != nil {
		fields[c.Status] = string(*p.Status)
	}
	if p.AddToList != nil {
		fields[c.AddToList] = *p.AddToList
	}
	if p.Survey != nil {
		fields[c.Survey] = *p.Survey
	}
	return fields
}

func stringField(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// stringsField reads a multiple-select cell. A lone string is treated as a
// single-element list.
func stringsField(v any) []string {
	switch s := v.(type) {
	case nil:
		return nil
	case []string:
		return contacts.CloneTags(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, stringField(item))
		}
		return out
	case string:
		if s == "" {
			return nil
		}
		return []string{s}
	default:
		return nil
	}
}
