package confluence

import (
	"encoding/base64"
)

// AuthMethod produces the value of the Authorization header.
// It is called once for every dispatched request.
type AuthMethod interface {
	AuthHeaderValue() string
}

// BasicAuth authenticates with an Atlassian account email and API token
type BasicAuth struct {
	Email    string
	APIToken string
}

// AuthHeaderValue implements AuthMethod
func (a BasicAuth) AuthHeaderValue() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(a.Email+":"+a.APIToken))
}

// BearerAuth authenticates with a personal access or OAuth token
type BearerAuth struct {
	Token string
}

// AuthHeaderValue implements AuthMethod
func (a BearerAuth) AuthHeaderValue() string {
	return "Bearer " + a.Token
}

// AuthFunc adapts a function to AuthMethod, useful for tokens that rotate
type AuthFunc func() string

// AuthHeaderValue implements AuthMethod
func (f AuthFunc) AuthHeaderValue() string {
	return f()
}
