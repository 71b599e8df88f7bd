package transport

import (
	"net/http"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	auth := &BearerAuth{Token: "pat123"}
	auth.Apply(req)

	if got := req.Header.Get("Authorization"); got != "Bearer pat123" {
		t.Errorf("Expected Authorization header 'Bearer pat123', got '%s'", got)
	}
	if auth.Method() != "bearer" {
		t.Errorf("Expected method 'bearer', got '%s'", auth.Method())
	}
}

func TestBasicAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	auth := &BasicAuth{Username: "anystring", Password: "key-us6"}
	auth.Apply(req)

	// base64("anystring:key-us6")
	want := "Basic YW55c3RyaW5nOmtleS11czY="
	if got := req.Header.Get("Authorization"); got != want {
		t.Errorf("Expected Authorization header '%s', got '%s'", want, got)
	}
	user, pass, ok := req.BasicAuth()
	if !ok || user != "anystring" || pass != "key-us6" {
		t.Errorf("Expected credentials anystring/key-us6, got %s/%s", user, pass)
	}
	if auth.Method() != "basic" {
		t.Errorf("Expected method 'basic', got '%s'", auth.Method())
	}
}
