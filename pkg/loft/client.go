package loft

import (
	"context"
	"encoding/json"
	"time"
)

// Client is the top level interface to a Loft platform instance. Obtain an
// implementation via the loftclient package.
type Client interface {
	// Registry accesses the device registry API.
	Registry() RegistryClient
	// Admin accesses the application administration API.
	Admin() AdminClient
	// Tokens accesses the access token API.
	Tokens() TokensClient
	// User accesses the user authentication and authorization services.
	User() UserClient
	// Discovery accesses endpoint discovery and platform information.
	Discovery() DiscoveryClient
	// Command accesses the command and control API.
	Command() CommandClient
	// Events accesses the websocket event integration.
	Events() EventsClient
}

// RegistryClient manages applications and devices.
//
// Get operations return nil without error when the resource does not exist.
type RegistryClient interface {
	GetApplication(ctx context.Context, name string) (*Application, error)
	ListApplications(ctx context.Context, opts *ListOptions) ([]Application, error)
	CreateApplication(ctx context.Context, app *Application) error
	UpdateApplication(ctx context.Context, app *Application) error
	DeleteApplication(ctx context.Context, name string) error

	GetDevice(ctx context.Context, application, name string) (*Device, error)
	// GetDevices fetches several devices concurrently. Missing devices are
	// left out of the result; order is not guaranteed.
	GetDevices(ctx context.Context, application string, names ...string) ([]Device, error)
	// GetDeviceAndGateways fetches a device together with the devices its
	// gateway selector names.
	GetDeviceAndGateways(ctx context.Context, application, name string) (*Device, []Device, error)
	ListDevices(ctx context.Context, application string, opts *ListOptions) ([]Device, error)
	CreateDevice(ctx context.Context, device *Device) error
	UpdateDevice(ctx context.Context, device *Device) error
	DeleteDevice(ctx context.Context, application, name string) error
}

// AdminClient manages application membership and ownership.
type AdminClient interface {
	// GetMembers returns nil without error when the application does not
	// exist.
	GetMembers(ctx context.Context, application string) (*Members, error)
	SetMembers(ctx context.Context, application string, members Members) error

	TransferOwnership(ctx context.Context, application, newUser string) error
	CancelTransfer(ctx context.Context, application string) error
	// ReadTransferState returns nil without error when no transfer is
	// pending.
	ReadTransferState(ctx context.Context, application string) (*TransferOwnership, error)
	AcceptOwnership(ctx context.Context, application string) error
}

// TokensClient manages access tokens of the current user.
type TokensClient interface {
	List(ctx context.Context) ([]AccessToken, error)
	Create(ctx context.Context, opts *AccessTokenCreationOptions) (*CreatedAccessToken, error)
	Delete(ctx context.Context, prefix string) error
}

// UserClient verifies credentials and permissions through the user service.
type UserClient interface {
	AuthenticateAccessToken(ctx context.Context, request AuthenticationRequest) (*AuthenticationResponse, error)
	AuthorizeAccess(ctx context.Context, request AuthorizationRequest) (*AuthorizationResponse, error)
	// WhoAmI returns the details of the currently authenticated user.
	WhoAmI(ctx context.Context) (*UserDetails, error)
}

// DiscoveryClient resolves public platform endpoints.
type DiscoveryClient interface {
	Endpoints(ctx context.Context) (*Endpoints, error)
	// ConsoleInfo returns the endpoint document served to authenticated
	// console users. It can carry entries the public document omits.
	ConsoleInfo(ctx context.Context) (*Endpoints, error)
	Version(ctx context.Context) (*PlatformVersion, error)
}

// CommandClient sends commands to devices.
type CommandClient interface {
	// PublishCommand sends a one-way command to a device. The payload may
	// be nil.
	PublishCommand(ctx context.Context, application, device, command string, payload []byte) error
}

// EventsClient consumes device events over the websocket integration.
type EventsClient interface {
	// Stream opens an event stream for an application. The stream is
	// closed when ctx is cancelled.
	Stream(ctx context.Context, application string, opts *StreamOptions) (EventStream, error)
}

// StreamOptions configure an event stream.
type StreamOptions struct {
	// Consumer names a shared Kafka consumer group.
	Consumer string
}

// EventStream is an open stream of device events.
type EventStream interface {
	// Next blocks until the next event arrives, the stream fails, or ctx
	// is cancelled. A closed stream returns ErrStreamClosed.
	Next(ctx context.Context) (*Event, error)
	Close() error
}

// Event is a single device event, in CloudEvents form.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Time        *time.Time      `json:"time,omitempty"`
	Subject     string          `json:"subject,omitempty"`
	ContentType string          `json:"datacontenttype,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`

	// Extensions carries the remaining event attributes, such as the
	// application, device and channel names.
	Extensions map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON captures unknown attributes into Extensions.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event

	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for _, known := range []string{"id", "type", "source", "time", "subject", "datacontenttype", "data"} {
		delete(all, known)
	}

	if len(all) > 0 {
		e.Extensions = all
	}

	return nil
}

// Extension decodes a named extension attribute as a string, returning the
// empty string when absent or not a string.
func (e *Event) Extension(name string) string {
	raw, ok := e.Extensions[name]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s
}

// Logger is the logging interface used across the client. Implementations
// must be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config configures a new client.
type Config struct {
	// APIEndpoint is the base URL of the platform API. Either this or
	// DiscoveryEndpoint must be set.
	APIEndpoint string

	// DiscoveryEndpoint is the base URL used to resolve the remaining
	// endpoints from the well-known discovery document.
	DiscoveryEndpoint string

	// Token is a static bearer token.
	Token string

	// AccessToken is an API access token, used together with Username as
	// HTTP basic credentials.
	AccessToken string

	// Username is the user id for access token authentication.
	Username string

	// OAuth2 configures client credentials based authentication.
	OAuth2 *OAuth2Config

	// SkipTLSVerify disables TLS certificate verification. Only honored
	// for development endpoints.
	SkipTLSVerify bool

	// HTTPTimeout is the per-request timeout. Zero selects a default.
	HTTPTimeout time.Duration

	// RetryMax is the maximum number of retries for failed requests.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the retry backoff.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// Debug enables request and response logging.
	Debug bool

	// Logger receives structured log output. Nil disables logging.
	Logger Logger

	// Cache configures response caching for GET requests. Nil disables
	// caching.
	Cache *CacheConfig
}

// OAuth2Config configures client credentials authentication against the
// platform SSO.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	// TokenURL is the token endpoint. When empty it is resolved from the
	// discovery document's SSO URL.
	TokenURL string
	Scopes   []string
}

// Validate checks the configuration for the most common mistakes.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if c.APIEndpoint == "" && c.DiscoveryEndpoint == "" {
		return ErrAPIEndpointRequired
	}

	return nil
}
