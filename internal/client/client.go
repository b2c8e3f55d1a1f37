// Package client implements the service clients defined in pkg/loft.
package client

import (
	"strings"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

// Client implements loft.Client on top of the shared HTTP transport.
type Client struct {
	http *lofthttp.Client

	registry  *RegistryClient
	admin     *AdminClient
	tokens    *TokensClient
	user      *UserClient
	discovery *DiscoveryClient
	command   *CommandClient
	events    *EventsClient
}

// Options carry the pieces assembled by the loftclient package.
type Options struct {
	// HTTP is the configured transport for the API endpoint.
	HTTP *lofthttp.Client

	// WebsocketURL is the websocket integration endpoint, empty when not
	// discovered.
	WebsocketURL string

	// BearerToken supplies the token attached to websocket streams.
	BearerToken func() (string, error)

	// Logger receives structured log output, may be nil.
	Logger loft.Logger
}

// New creates a client from assembled options.
func New(opts Options) *Client {
	c := &Client{http: opts.HTTP}

	c.registry = &RegistryClient{http: opts.HTTP}
	c.admin = &AdminClient{http: opts.HTTP}
	c.tokens = &TokensClient{http: opts.HTTP}
	c.user = &UserClient{http: opts.HTTP}
	c.discovery = &DiscoveryClient{http: opts.HTTP}
	c.command = &CommandClient{http: opts.HTTP}
	c.events = &EventsClient{
		url:    strings.TrimSuffix(opts.WebsocketURL, "/"),
		token:  opts.BearerToken,
		logger: opts.Logger,
	}

	return c
}

// Registry implements loft.Client.
func (c *Client) Registry() loft.RegistryClient { return c.registry }

// Admin implements loft.Client.
func (c *Client) Admin() loft.AdminClient { return c.admin }

// Tokens implements loft.Client.
func (c *Client) Tokens() loft.TokensClient { return c.tokens }

// User implements loft.Client.
func (c *Client) User() loft.UserClient { return c.user }

// Discovery implements loft.Client.
func (c *Client) Discovery() loft.DiscoveryClient { return c.discovery }

// Command implements loft.Client.
func (c *Client) Command() loft.CommandClient { return c.command }

// Events implements loft.Client.
func (c *Client) Events() loft.EventsClient { return c.events }
