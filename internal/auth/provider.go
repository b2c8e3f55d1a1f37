// Package auth provides token providers for authenticating against the
// platform APIs.
package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials is a single set of credentials to attach to a request.
// Exactly one field is set.
type Credentials struct {
	// Bearer is an OAuth bearer token.
	Bearer string
	// Basic is a username/password pair.
	Basic *BasicCredentials
}

// BasicCredentials are HTTP basic auth credentials.
type BasicCredentials struct {
	Username string
	Password string
}

// TokenProvider supplies credentials for outgoing requests. Implementations
// must be safe for concurrent use.
type TokenProvider interface {
	// ProvideToken returns the credentials to use, or nil to send the
	// request unauthenticated.
	ProvideToken(ctx context.Context) (*Credentials, error)
}

// None is a TokenProvider that never authenticates.
type None struct{}

// ProvideToken implements TokenProvider.
func (None) ProvideToken(_ context.Context) (*Credentials, error) {
	return nil, nil
}

// StaticBearer provides a fixed bearer token.
type StaticBearer struct {
	Token string
}

// ProvideToken implements TokenProvider.
func (p *StaticBearer) ProvideToken(_ context.Context) (*Credentials, error) {
	return &Credentials{Bearer: p.Token}, nil
}

// AccessToken provides API access token credentials, sent as HTTP basic
// auth with the user id as the username.
type AccessToken struct {
	UserID string
	Token  string
}

// ProvideToken implements TokenProvider.
func (p *AccessToken) ProvideToken(_ context.Context) (*Credentials, error) {
	return &Credentials{
		Basic: &BasicCredentials{
			Username: p.UserID,
			Password: p.Token,
		},
	}, nil
}

// OAuth2 provides bearer tokens obtained through the OAuth2 client
// credentials flow. Tokens are cached and refreshed by the underlying
// token source.
type OAuth2 struct {
	mu     sync.Mutex
	source oauth2.TokenSource
	config clientcredentials.Config
}

// NewOAuth2 creates a provider for the client credentials flow against the
// given token endpoint.
func NewOAuth2(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2 {
	return &OAuth2{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

// ProvideToken implements TokenProvider.
func (p *OAuth2) ProvideToken(ctx context.Context) (*Credentials, error) {
	p.mu.Lock()
	if p.source == nil {
		p.source = p.config.TokenSource(ctx)
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("fetching OAuth2 token: %w", err)
	}

	return &Credentials{Bearer: token.AccessToken}, nil
}
