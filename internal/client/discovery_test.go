package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/pkg/loft"
)

func TestDiscoveryClient_Endpoints(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, testEndpoint{
		Method: "GET",
		Path:   "/.well-known/loft-endpoints",
		Body: loft.Endpoints{
			API:       &loft.HTTPEndpoint{URL: "https://api.example.com"},
			SSO:       "https://sso.example.com",
			Websocket: &loft.HTTPEndpoint{URL: "https://ws.example.com"},
			MQTT:      &loft.MQTTEndpoint{Host: "mqtt.example.com", Port: 8883},
		},
	})
	defer server.Close()

	endpoints, err := NewTestClient(server.URL).Discovery().Endpoints(context.Background())
	require.NoError(t, err)
	require.NotNil(t, endpoints.API)
	assert.Equal(t, "https://api.example.com", endpoints.API.URL)
	assert.Equal(t, "https://sso.example.com", endpoints.SSO)
	require.NotNil(t, endpoints.MQTT)
	assert.Equal(t, uint16(8883), endpoints.MQTT.Port)
}

func TestDiscoveryClient_Version(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, testEndpoint{
		Method: "GET",
		Path:   "/.well-known/loft-version",
		Body:   loft.PlatformVersion{Success: true, Version: "0.11.0"},
	})
	defer server.Close()

	version, err := NewTestClient(server.URL).Discovery().Version(context.Background())
	require.NoError(t, err)
	assert.True(t, version.Success)
	assert.Equal(t, "0.11.0", version.Version)
}

func TestDiscoveryClient_ConsoleInfo(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, testEndpoint{
		Method: "GET",
		Path:   "/api/console/v1alpha1/info",
		Body: loft.Endpoints{
			API:       &loft.HTTPEndpoint{URL: "https://api.example.com"},
			IssuerURL: "https://sso.example.com/realms/loft",
			Kafka:     &loft.KafkaEndpoint{BootstrapServers: "kafka.example.com:9092"},
		},
	})
	defer server.Close()

	endpoints, err := NewTestClient(server.URL).Discovery().ConsoleInfo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, endpoints.Kafka)
	assert.Equal(t, "kafka.example.com:9092", endpoints.Kafka.BootstrapServers)
	assert.Equal(t,
		"https://sso.example.com/realms/loft/protocol/openid-connect/token",
		endpoints.TokenURL())
}
