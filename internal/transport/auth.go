package transport

import "net/http"

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
	// Method names the scheme in authentication errors.
	Method() string
}

// BearerAuth implements Bearer token authentication (Airtable).
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// Method implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Method() string { return "bearer" }

// BasicAuth implements HTTP Basic authentication (Mailchimp accepts any
// username with the API key as password).
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// Method implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Method() string { return "basic" }
