package reconcile

import (
	"context"
	"fmt"

	"github.com/agentstation/contactsync/pkg/contacts"
)

// MemoryRecords is an in-memory RecordsStore that records every write.
// It is intended for tests.
type MemoryRecords struct {
	Rows    map[string]contacts.Row
	Created []contacts.Row
	Patches map[string][]contacts.RowPatch
	Err     error // returned by every write when set

	nextID int
}

// NewMemoryRecords creates a MemoryRecords seeded with rows.
func NewMemoryRecords(rows ...contacts.Row) *MemoryRecords {
	m := &MemoryRecords{Rows: make(map[string]contacts.Row), Patches: make(map[string][]contacts.RowPatch)}
	for _, r := range rows {
		if r.ID == "" {
			r.ID = m.newID()
		}
		m.Rows[r.Key()] = r
	}
	return m
}

func (m *MemoryRecords) newID() string {
	m.nextID++
	return fmt.Sprintf("rec%04d", m.nextID)
}

// FetchAll implements RecordsStore.
func (m *MemoryRecords) FetchAll(context.Context) (map[string]contacts.Row, error) {
	out := make(map[string]contacts.Row, len(m.Rows))
	for k, v := range m.Rows {
		out[k] = v
	}
	return out, nil
}

// CreateRow implements RecordsStore.
func (m *MemoryRecords) CreateRow(_ context.Context, row contacts.Row) (contacts.Row, error) {
	if m.Err != nil {
		return contacts.Row{}, m.Err
	}
	row.ID = m.newID()
	m.Created = append(m.Created, row)
	m.Rows[row.Key()] = row
	return row, nil
}

// PatchRow implements RecordsStore.
func (m *MemoryRecords) PatchRow(_ context.Context, id string, patch contacts.RowPatch) (contacts.Row, error) {
	if m.Err != nil {
		return contacts.Row{}, m.Err
	}
	m.Patches[id] = append(m.Patches[id], patch)
	for k, row := range m.Rows {
		if row.ID != id {
			continue
		}
		if patch.Name != nil {
			row.Name = *patch.Name
		}
		if patch.Email != nil {
			row.Email = *patch.Email
		}
		if patch.Status != nil {
			row.Status = *patch.Status
		}
		if patch.Tags != nil {
			row.Tags = contacts.CloneTags(patch.Tags)
		}
		if patch.AddToList != nil {
			row.AddToList = *patch.AddToList
		}
		if patch.Survey != nil {
			row.Survey = *patch.Survey
		}
		m.Rows[k] = row
		return row, nil
	}
	return contacts.Row{}, fmt.Errorf("row %s not found", id)
}

// Writes returns the number of create and patch calls received.
func (m *MemoryRecords) Writes() int {
	n := len(m.Created)
	for _, p := range m.Patches {
		n += len(p)
	}
	return n
}

// MemoryList is an in-memory ListService that records every write.
// It is intended for tests.
type MemoryList struct {
	Members map[string]contacts.Subscriber
	Created []contacts.Subscriber
	Patches map[string][]contacts.SubscriberPatch // keyed by normalized email
	Err     error

	nextID int
}

// NewMemoryList creates a MemoryList seeded with subscribers.
func NewMemoryList(subs ...contacts.Subscriber) *MemoryList {
	m := &MemoryList{Members: make(map[string]contacts.Subscriber), Patches: make(map[string][]contacts.SubscriberPatch)}
	for _, s := range subs {
		if s.ID == "" {
			s.ID = m.newID()
		}
		m.Members[s.Key()] = s
	}
	return m
}

func (m *MemoryList) newID() string {
	m.nextID++
	return fmt.Sprintf("mem%04d", m.nextID)
}

// FetchAll implements ListService.
func (m *MemoryList) FetchAll(context.Context) (map[string]contacts.Subscriber, error) {
	out := make(map[string]contacts.Subscriber, len(m.Members))
	for k, v := range m.Members {
		out[k] = v
	}
	return out, nil
}

// CreateSubscriber implements ListService.
func (m *MemoryList) CreateSubscriber(_ context.Context, sub contacts.Subscriber) (contacts.Subscriber, error) {
	if m.Err != nil {
		return contacts.Subscriber{}, m.Err
	}
	sub.ID = m.newID()
	m.Created = append(m.Created, sub)
	m.Members[sub.Key()] = sub
	return sub, nil
}

// PatchSubscriber implements ListService.
func (m *MemoryList) PatchSubscriber(_ context.Context, email string, patch contacts.SubscriberPatch) (contacts.Subscriber, error) {
	if m.Err != nil {
		return contacts.Subscriber{}, m.Err
	}
	key := contacts.NormalizeEmail(email)
	sub, ok := m.Members[key]
	if !ok {
		return contacts.Subscriber{}, fmt.Errorf("member %s not found", email)
	}
	m.Patches[key] = append(m.Patches[key], patch)
	if patch.FirstName != nil {
		sub.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		sub.LastName = *patch.LastName
	}
	if patch.Status != nil {
		sub.Status = *patch.Status
	}
	m.Members[key] = sub
	return sub, nil
}

// Writes returns the number of create and patch calls received.
func (m *MemoryList) Writes() int {
	n := len(m.Created)
	for _, p := range m.Patches {
		n += len(p)
	}
	return n
}
