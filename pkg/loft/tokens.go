package loft

import "time"

// AccessToken describes an existing access token. The token value itself is
// only available at creation time.
type AccessToken struct {
	Created     time.Time `json:"created"               yaml:"created"`
	Prefix      string    `json:"prefix"                yaml:"prefix"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// CreatedAccessToken is returned once when a token is created and carries
// the full token value.
type CreatedAccessToken struct {
	Token  string `json:"token"  yaml:"token"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

// AccessTokenCreationOptions influence the creation of a new access token.
type AccessTokenCreationOptions struct {
	Description string
}
