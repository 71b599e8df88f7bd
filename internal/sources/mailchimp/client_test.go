package mailchimp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactsync/pkg/contacts"
	"github.com/agentstation/contactsync/pkg/errors"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newTestClient(t *testing.T, pageSize int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:   "0123abcd-us6",
		ListID:   "85012e451a",
		BaseURL:  server.URL + "/3.0",
		PageSize: pageSize,
	})
	require.NoError(t, err)
	return client
}

func TestDataCenter(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "0123abcd-us6", want: "us6"},
		{key: " 0123abcd-us21 ", want: "us21"},
		{key: "0123abcd", wantErr: true},
		{key: "0123abcd-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := DataCenter(tt.key)
			if tt.wantErr {
				assert.True(t, errors.IsAPIKeyError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{APIKey: "abc-us6"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://us6.api.mailchimp.com/3.0", cfg.BaseURL)
	assert.Equal(t, "85012e451a", cfg.ListID)
	assert.Equal(t, 100, cfg.PageSize)

	empty := Config{}
	err := empty.Validate()
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestMemberHash(t *testing.T) {
	assert.Equal(t, "3e3417d7ef77d5932a6734b916515ed5", MemberHash("ada@example.com"))
	assert.Equal(t, MemberHash("ada@example.com"), MemberHash("  ADA@Example.com "))
}

func TestFetchAllStopsOnShortPage(t *testing.T) {
	var offsets []string
	client := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/3.0/lists/85012e451a/members", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "anystring", user)
		assert.Equal(t, "0123abcd-us6", pass)
		assert.Equal(t, "2", r.URL.Query().Get("count"))

		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		switch offset {
		case "0":
			_, _ = w.Write(loadTestdata(t, "members_page1.json"))
		case "2":
			_, _ = w.Write(loadTestdata(t, "members_page2.json"))
		default:
			t.Errorf("unexpected offset %q", offset)
		}
	})

	subs, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, offsets)
	require.Len(t, subs, 3)

	ada := subs["ada@example.com"]
	assert.Equal(t, "f1a2", ada.ID)
	assert.Equal(t, "Ada", ada.FirstName)
	assert.Equal(t, "Lovelace", ada.LastName)
	assert.Equal(t, contacts.StatusSubscribed, ada.Status)
	assert.Equal(t, []string{"collector", "alpha"}, ada.Tags)

	assert.Equal(t, contacts.StatusCleaned, subs["grace@example.com"].Status)

	alan := subs["alan@example.com"]
	assert.Empty(t, alan.FirstName)
	assert.Equal(t, []string{}, alan.Tags)
}

func TestFetchAllEmptyList(t *testing.T) {
	calls := 0
	client := newTestClient(t, 100, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"members":[],"total_items":0}`))
	})

	subs, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Equal(t, 1, calls)
}

func TestFetchAllServerError(t *testing.T) {
	client := newTestClient(t, 100, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrServiceUnavailable)
}

func TestCreateSubscriberIsPending(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, 100, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/3.0/lists/85012e451a/members", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"new1","email_address":"grace@example.com","status":"pending",
			"merge_fields":{"FNAME":"Grace","LNAME":"Hopper"},"tags":[{"id":1,"name":"vip"}],"list_id":"85012e451a"}`))
	})

	created, err := client.CreateSubscriber(context.Background(), contacts.Subscriber{
		Email:     "grace@example.com",
		FirstName: "Grace",
		LastName:  "Hopper",
		Status:    contacts.StatusSubscribed,
		Tags:      []string{"vip"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "grace@example.com", body["email_address"])
	assert.Equal(t, map[string]any{"FNAME": "Grace", "LNAME": "Hopper"}, body["merge_fields"])
	assert.Equal(t, []any{"vip"}, body["tags"])

	assert.Equal(t, "new1", created.ID)
	assert.Equal(t, contacts.StatusPending, created.Status)
	assert.Equal(t, []string{"vip"}, created.Tags)
}

func TestPatchSubscriberAddressesByHash(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, 100, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/3.0/lists/85012e451a/members/"+MemberHash("ada@example.com"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"f1a2","email_address":"ada@example.com","status":"subscribed",
			"merge_fields":{"FNAME":"Ada","LNAME":"King"},"tags":[]}`))
	})

	first, last := "Ada", "King"
	updated, err := client.PatchSubscriber(context.Background(), "Ada@Example.com", contacts.SubscriberPatch{
		FirstName: &first,
		LastName:  &last,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"merge_fields": map[string]any{"FNAME": "Ada", "LNAME": "King"}}, body)
	assert.Equal(t, "King", updated.LastName)
}

func TestPatchSubscriberNotFound(t *testing.T) {
	client := newTestClient(t, 100, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"Resource Not Found"}`))
	})

	_, err := client.PatchSubscriber(context.Background(), "missing@example.com", contacts.SubscriberPatch{})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	var resErr *errors.ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "patch", resErr.Operation)
	assert.Equal(t, "subscriber", resErr.Resource)
}
