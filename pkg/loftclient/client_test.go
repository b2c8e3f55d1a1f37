package loftclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/pkg/loft"
	"github.com/loft-iot/loft-client/pkg/loftclient"
)

func newPlatform(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	var server *httptest.Server

	mux.HandleFunc("/.well-known/loft-endpoints", func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(loft.Endpoints{
			API:       &loft.HTTPEndpoint{URL: server.URL},
			Websocket: &loft.HTTPEndpoint{URL: server.URL + "/ws"},
			SSO:       server.URL + "/sso",
		})
	})

	mux.HandleFunc("/api/registry/v1alpha1/apps/app1", func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(loft.NewApplication("app1"))
	})

	server = httptest.NewServer(mux)

	return server
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := loftclient.New(context.Background(), nil)
	require.ErrorIs(t, err, loft.ErrConfigRequired)

	_, err = loftclient.New(context.Background(), &loft.Config{})
	require.ErrorIs(t, err, loft.ErrAPIEndpointRequired)
}

func TestNew_WithAPIEndpoint(t *testing.T) {
	t.Parallel()

	server := newPlatform(t)
	defer server.Close()

	client, err := loftclient.New(context.Background(), &loft.Config{
		APIEndpoint: server.URL,
		Token:       "test-token",
	})
	require.NoError(t, err)

	app, err := client.Registry().GetApplication(context.Background(), "app1")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, "app1", app.Metadata.Name)
}

func TestNew_WithDiscovery(t *testing.T) {
	t.Parallel()

	server := newPlatform(t)
	defer server.Close()

	client, err := loftclient.New(context.Background(), &loft.Config{
		DiscoveryEndpoint: server.URL,
	})
	require.NoError(t, err)

	app, err := client.Registry().GetApplication(context.Background(), "app1")
	require.NoError(t, err)
	require.NotNil(t, app)
}

func TestNew_DiscoveryFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := loftclient.New(context.Background(), &loft.Config{
		DiscoveryEndpoint: server.URL,
	})
	require.Error(t, err)
}

func TestNew_APIEndpointWithoutDiscovery(t *testing.T) {
	t.Parallel()

	// A platform that serves no well-known documents still works for
	// plain API access.
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/.well-known/loft-endpoints" {
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		_ = json.NewEncoder(writer).Encode(loft.NewApplication("app1"))
	}))
	defer server.Close()

	client, err := loftclient.New(context.Background(), &loft.Config{APIEndpoint: server.URL})
	require.NoError(t, err)

	app, err := client.Registry().GetApplication(context.Background(), "app1")
	require.NoError(t, err)
	require.NotNil(t, app)

	// Without discovery there is no websocket endpoint.
	_, err = client.Events().Stream(context.Background(), "app1", nil)
	require.ErrorIs(t, err, loft.ErrNoWebsocketEndpoint)
}

func TestNew_SkipTLSVerifyGuard(t *testing.T) {
	t.Parallel()

	_, err := loftclient.New(context.Background(), &loft.Config{
		APIEndpoint:   "https://api.example.com",
		SkipTLSVerify: true,
	})
	require.ErrorIs(t, err, loft.ErrSkipTLSOnlyInDev)

	// Local endpoints may skip verification.
	server := newPlatform(t)
	defer server.Close()

	_, err = loftclient.New(context.Background(), &loft.Config{
		APIEndpoint:   server.URL,
		SkipTLSVerify: true,
	})
	require.NoError(t, err)
}

func TestNew_OAuth2RequiresTokenURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := loftclient.New(context.Background(), &loft.Config{
		APIEndpoint: server.URL,
		OAuth2:      &loft.OAuth2Config{ClientID: "svc", ClientSecret: "secret"},
	})
	require.ErrorIs(t, err, loft.ErrNoSSOURL)
}

func TestNew_WithMetricsRegistry(t *testing.T) {
	t.Parallel()

	server := newPlatform(t)
	defer server.Close()

	registry := prometheus.NewRegistry()

	client, err := loftclient.New(context.Background(), &loft.Config{
		APIEndpoint: server.URL,
	}, loftclient.WithMetricsRegistry(registry))
	require.NoError(t, err)

	_, err = client.Registry().GetApplication(context.Background(), "app1")
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_WithCache(t *testing.T) {
	t.Parallel()

	server := newPlatform(t)
	defer server.Close()

	client, err := loftclient.New(context.Background(), &loft.Config{
		APIEndpoint: server.URL,
		Cache:       &loft.CacheConfig{Type: loft.CacheTypeMemory},
	})
	require.NoError(t, err)

	_, err = client.Registry().GetApplication(context.Background(), "app1")
	require.NoError(t, err)
}
