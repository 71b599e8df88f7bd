package mailchimp

import (
	"github.com/agentstation/contactsync/internal/utils/ptr"
	"github.com/agentstation/contactsync/pkg/contacts"
)

type mergeFields struct {
	FirstName *string `json:"FNAME,omitempty"`
	LastName  *string `json:"LNAME,omitempty"`
}

type tag struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// member is a list member as returned by the Marketing API.
type member struct {
	ID            string      `json:"id"`
	EmailAddress  string      `json:"email_address"`
	UniqueEmailID string      `json:"unique_email_id,omitempty"`
	Status        string      `json:"status"`
	MergeFields   mergeFields `json:"merge_fields"`
	Tags          []tag       `json:"tags"`
	ListID        string      `json:"list_id"`
}

type membersResponse struct {
	Members    []member `json:"members"`
	ListID     string   `json:"list_id"`
	TotalItems int      `json:"total_items"`
}

type createRequest struct {
	EmailAddress string      `json:"email_address"`
	Status       string      `json:"status"`
	MergeFields  mergeFields `json:"merge_fields"`
	Tags         []string    `json:"tags"`
}

type patchRequest struct {
	Status      string       `json:"status,omitempty"`
	MergeFields *mergeFields `json:"merge_fields,omitempty"`
}

func (m member) toSubscriber() contacts.Subscriber {
	sub := contacts.Subscriber{
		ID:        m.ID,
		ListID:    m.ListID,
		Email:     m.EmailAddress,
		FirstName: ptr.Deref(m.MergeFields.FirstName),
		LastName:  ptr.Deref(m.MergeFields.LastName),
		Status:    contacts.Status(m.Status),
		Tags:      make([]string, 0, len(m.Tags)),
	}
	for _, t := range m.Tags {
		sub.Tags = append(sub.Tags, t.Name)
	}
	return sub
}

func newCreateRequest(sub contacts.Subscriber) createRequest {
	return createRequest{
		EmailAddress: sub.Email,
		Status:       string(contacts.StatusPending),
		MergeFields:  mergeFields{FirstName: ptr.String(sub.FirstName), LastName: ptr.String(sub.LastName)},
		Tags:         contacts.CloneTags(sub.Tags),
	}
}

func newPatchRequest(p contacts.SubscriberPatch) patchRequest {
	var req patchRequest
	if p.FirstName != nil || p.LastName != nil {
		req.MergeFields = &mergeFields{FirstName: p.FirstName, LastName: p.LastName}
	}
	if p.Status != nil {
		req.Status = string(*p.Status)
	}
	return req
}
