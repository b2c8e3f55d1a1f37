package loft

import (
	"encoding/json"
	"time"
)

// ExternalEndpoint describes an HTTP endpoint events can be delivered to.
type ExternalEndpoint struct {
	Method  string          `json:"method,omitempty"  yaml:"method,omitempty"`
	URL     string          `json:"url"               yaml:"url"`
	TLS     *TLSOptions     `json:"tls,omitempty"     yaml:"tls,omitempty"`
	Auth    Authentication  `json:"auth,omitempty"    yaml:"auth,omitempty"`
	Headers []Header        `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout *DurationString `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Header is a single HTTP header to send to an external endpoint.
type Header struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// TLSOptions controls TLS behavior for an external endpoint.
type TLSOptions struct {
	Insecure    bool   `json:"insecure,omitempty"    yaml:"insecure,omitempty"`
	Certificate string `json:"certificate,omitempty" yaml:"certificate,omitempty"`
}

// Authentication selects how to authenticate against an external endpoint.
// The zero value means no authentication; the JSON form is the string
// "none" or an object keyed by the active variant.
type Authentication struct {
	Basic  *BasicAuth
	Bearer *BearerAuth
}

// BasicAuth authenticates with a username and optional password.
type BasicAuth struct {
	Username string  `json:"username"           yaml:"username"`
	Password *string `json:"password,omitempty" yaml:"password,omitempty"`
}

// BearerAuth authenticates with a static bearer token.
type BearerAuth struct {
	Token string `json:"token" yaml:"token"`
}

// IsNone reports whether no authentication is configured.
func (a Authentication) IsNone() bool {
	return a.Basic == nil && a.Bearer == nil
}

// MarshalJSON emits "none" or the active variant under its key.
func (a Authentication) MarshalJSON() ([]byte, error) {
	switch {
	case a.Basic != nil:
		return json.Marshal(map[string]*BasicAuth{"basic": a.Basic})
	case a.Bearer != nil:
		return json.Marshal(map[string]*BearerAuth{"bearer": a.Bearer})
	default:
		return json.Marshal("none")
	}
}

// UnmarshalJSON accepts the string "none" or a variant-keyed object.
func (a *Authentication) UnmarshalJSON(data []byte) error {
	var none string
	if err := json.Unmarshal(data, &none); err == nil {
		*a = Authentication{}

		return nil
	}

	var variants struct {
		Basic  *BasicAuth  `json:"basic"`
		Bearer *BearerAuth `json:"bearer"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	a.Basic = variants.Basic
	a.Bearer = variants.Bearer

	return nil
}

// DurationString is a time.Duration that serializes as a human readable
// duration string such as "30s" or "1m30s".
type DurationString time.Duration

// Duration returns the wrapped duration.
func (d DurationString) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d DurationString) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DurationString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = DurationString(parsed)

	return nil
}
