// Package loftclient constructs ready-to-use API clients from configuration.
package loftclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loft-iot/loft-client/internal/auth"
	"github.com/loft-iot/loft-client/internal/client"
	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

// Option configures client construction beyond what loft.Config carries.
type Option func(*builder)

// WithMetricsRegistry registers request metrics with reg.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(b *builder) {
		b.metricsRegistry = reg
	}
}

type builder struct {
	metricsRegistry prometheus.Registerer
}

// New creates a client from configuration. When the configuration names a
// discovery endpoint, the API and websocket endpoints are resolved from the
// platform's well-known documents.
func New(ctx context.Context, config *loft.Config, opts ...Option) (loft.Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	apiEndpoint, err := normalizeEndpoint(config.APIEndpoint)
	if err != nil {
		return nil, err
	}

	if config.SkipTLSVerify && !isDevEndpoint(apiEndpoint) {
		return nil, loft.ErrSkipTLSOnlyInDev
	}

	endpoints, err := discoverEndpoints(ctx, config, apiEndpoint)
	if err != nil {
		return nil, err
	}

	if apiEndpoint == "" {
		if endpoints == nil || endpoints.API == nil {
			return nil, loft.ErrAPIEndpointRequired
		}

		apiEndpoint = strings.TrimSuffix(endpoints.API.URL, "/")
	}

	tokenProvider, err := buildTokenProvider(config, endpoints)
	if err != nil {
		return nil, err
	}

	httpClient, err := buildHTTPClient(config, apiEndpoint, tokenProvider, b)
	if err != nil {
		return nil, err
	}

	websocketURL := ""
	if endpoints != nil && endpoints.Websocket != nil {
		websocketURL = endpoints.Websocket.URL
	}

	return client.New(client.Options{
		HTTP:         httpClient,
		WebsocketURL: websocketURL,
		BearerToken:  bearerTokenFunc(tokenProvider),
		Logger:       config.Logger,
	}), nil
}

// discoverEndpoints fetches the well-known endpoint document. When only an
// API endpoint is configured, discovery failures are tolerated; the event
// stream then stays unavailable.
func discoverEndpoints(ctx context.Context, config *loft.Config, apiEndpoint string) (*loft.Endpoints, error) {
	base := config.DiscoveryEndpoint
	required := true

	if base == "" {
		base = apiEndpoint
		required = false
	}

	base, err := normalizeEndpoint(base)
	if err != nil {
		return nil, err
	}

	probe := lofthttp.NewClient(base, nil,
		lofthttp.WithUserAgent(config.UserAgent),
		lofthttp.WithSkipTLSVerify(config.SkipTLSVerify))

	discovery := client.New(client.Options{HTTP: probe}).Discovery()

	endpoints, err := discovery.Endpoints(ctx)
	if err != nil {
		if required {
			return nil, fmt.Errorf("discovering endpoints: %w", err)
		}

		return nil, nil
	}

	return endpoints, nil
}

func buildTokenProvider(config *loft.Config, endpoints *loft.Endpoints) (auth.TokenProvider, error) {
	switch {
	case config.Token != "":
		return &auth.StaticBearer{Token: config.Token}, nil

	case config.AccessToken != "":
		return &auth.AccessToken{UserID: config.Username, Token: config.AccessToken}, nil

	case config.OAuth2 != nil:
		tokenURL := config.OAuth2.TokenURL
		if tokenURL == "" && endpoints != nil {
			tokenURL = endpoints.TokenURL()
		}

		if tokenURL == "" {
			return nil, loft.ErrNoSSOURL
		}

		return auth.NewOAuth2(
			config.OAuth2.ClientID,
			config.OAuth2.ClientSecret,
			tokenURL,
			config.OAuth2.Scopes,
		), nil

	default:
		return auth.None{}, nil
	}
}

func buildHTTPClient(config *loft.Config, apiEndpoint string, tokenProvider auth.TokenProvider, b *builder) (*lofthttp.Client, error) {
	opts := []lofthttp.Option{
		lofthttp.WithUserAgent(config.UserAgent),
		lofthttp.WithSkipTLSVerify(config.SkipTLSVerify),
	}

	if config.Logger != nil {
		opts = append(opts, lofthttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, lofthttp.WithDebug(true))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, lofthttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		opts = append(opts, lofthttp.WithRetryConfig(
			config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.Cache != nil {
		cache, err := loft.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, err
		}

		opts = append(opts, lofthttp.WithCache(cache, 0))
	}

	if b.metricsRegistry != nil {
		opts = append(opts, lofthttp.WithMetrics(lofthttp.NewMetrics(b.metricsRegistry)))
	}

	return lofthttp.NewClient(apiEndpoint, tokenProvider, opts...), nil
}

// bearerTokenFunc adapts a token provider to the websocket stream, which
// only supports bearer tokens.
func bearerTokenFunc(provider auth.TokenProvider) func() (string, error) {
	return func() (string, error) {
		credentials, err := provider.ProvideToken(context.Background())
		if err != nil {
			return "", err
		}

		switch {
		case credentials == nil:
			return "", loft.ErrNoTokenProvider
		case credentials.Bearer != "":
			return credentials.Bearer, nil
		case credentials.Basic != nil:
			// Access tokens double as bearer tokens on the websocket
			// endpoint.
			return credentials.Basic.Password, nil
		default:
			return "", loft.ErrNoTokenProvider
		}
	}
}

// normalizeEndpoint defaults the scheme to https and strips any trailing
// slash. An empty endpoint stays empty.
func normalizeEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", nil
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	return strings.TrimSuffix(parsed.String(), "/"), nil
}

func isDevEndpoint(endpoint string) bool {
	if endpoint == "" {
		return true
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false
	}

	host := parsed.Hostname()

	return host == "localhost" || host == "127.0.0.1" || host == "::1" ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".test") ||
		parsed.Scheme == "http"
}
