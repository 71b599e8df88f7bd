package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactsync/pkg/errors"
)

func TestJSONRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ada"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"rec1"}`))
	}))
	defer server.Close()

	c := New("airtable", &BearerAuth{Token: "tok"}, WithHTTPClient(server.Client()))

	var out struct {
		ID string `json:"id"`
	}
	err := c.JSON(context.Background(), http.MethodPatch, server.URL+"/x", map[string]string{"name": "Ada"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "rec1", out.ID)
}

func TestJSONNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}` + "\n"))
	}))
	defer server.Close()

	c := New("mailchimp", nil)
	err := c.JSON(context.Background(), http.MethodGet, server.URL, nil, nil)

	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "mailchimp", apiErr.Service)
	assert.Equal(t, `{"error":"slow down"}`, apiErr.Message)
}

func TestJSONAuthenticationFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		auth   Authenticator
		method string
	}{
		{"unauthorized bearer", http.StatusUnauthorized, &BearerAuth{Token: "bad"}, "bearer"},
		{"forbidden basic", http.StatusForbidden, &BasicAuth{Username: "anystring", Password: "bad"}, "basic"},
		{"unauthorized without credentials", http.StatusUnauthorized, nil, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"AUTHENTICATION_REQUIRED"}`))
			}))
			defer server.Close()

			err := New("airtable", tt.auth).JSON(context.Background(), http.MethodGet, server.URL, nil, nil)
			require.Error(t, err)
			assert.True(t, errors.IsAPIKeyError(err))

			var authErr *errors.AuthenticationError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, "airtable", authErr.Service)
			assert.Equal(t, tt.method, authErr.Method)

			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, `{"error":"AUTHENTICATION_REQUIRED"}`, apiErr.Message)
		})
	}
}

func TestJSONInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := New("airtable", nil).JSON(context.Background(), http.MethodGet, server.URL, nil, &out)

	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "json", parseErr.Format)
}

func TestJSONUnmarshalableBody(t *testing.T) {
	err := New("airtable", nil).JSON(context.Background(), http.MethodPost, "http://127.0.0.1:0", map[string]any{"bad": make(chan int)}, nil)

	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestJSONConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := New("airtable", nil).JSON(context.Background(), http.MethodGet, url, nil, nil)

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, "request failed", apiErr.Message)
}

func TestEmptyBodyIsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var out json.RawMessage
	err := New("mailchimp", nil).JSON(context.Background(), http.MethodDelete, server.URL, nil, &out)
	assert.NoError(t, err)
}
