package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/internal/auth"
	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

// mockLogger records structured log calls.
type mockLogger struct {
	logs []map[string]interface{}
}

func (l *mockLogger) log(level, msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *mockLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *mockLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *mockLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *mockLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request with bearer token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/registry/v1alpha1/apps", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			_ = json.NewEncoder(writer).Encode([]map[string]interface{}{
				{"metadata": map[string]string{"name": "app1"}},
			})
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, &auth.StaticBearer{Token: "test-token"})

		resp, err := client.Do(context.Background(), &lofthttp.Request{
			Method: "GET",
			Path:   "/api/registry/v1alpha1/apps",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Len(t, result, 1)
	})

	t.Run("access token sent as basic auth", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "user-a", username)
			assert.Equal(t, "tkn-secret", password)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		provider := &auth.AccessToken{UserID: "user-a", Token: "tkn-secret"}
		client := lofthttp.NewClient(server.URL, provider)

		resp, err := client.Get(context.Background(), "/api/tokens/v1alpha1", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "labels=zone%3Deu1", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/api/registry/v1alpha1/apps",
			url.Values{"labels": []string{"zone=eu1"}})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]interface{}
			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Contains(t, body, "metadata")

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "/api/registry/v1alpha1/apps",
			loft.NewApplication("app1"))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(writer).Encode(loft.ErrorInformation{
				Error:   "AlreadyExists",
				Message: "name is taken",
			})
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "/api/registry/v1alpha1/apps",
			loft.NewApplication("app1"))
		require.Error(t, err)
		assert.Equal(t, 409, resp.StatusCode)

		apiErr := &loft.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 409, apiErr.Status)
		require.NotNil(t, apiErr.Info)
		assert.Equal(t, "AlreadyExists", apiErr.Info.Error)
	})

	t.Run("error response without payload", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/api/registry/v1alpha1/apps/ghost", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.True(t, loft.IsNotFound(err))

		apiErr := &loft.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Nil(t, apiErr.Info)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := lofthttp.NewClient(server.URL, nil)

		_, err := client.Do(context.Background(), &lofthttp.Request{
			Method:  "GET",
			Path:    "/",
			Headers: map[string]string{"X-Custom-Header": "custom-value"},
		})
		require.NoError(t, err)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &mockLogger{}
		client := lofthttp.NewClient(server.URL, nil,
			lofthttp.WithLogger(logger), lofthttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/", nil)
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*lofthttp.Client, context.Context) (*lofthttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *lofthttp.Client, ctx context.Context) (*lofthttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *lofthttp.Client, ctx context.Context) (*lofthttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *lofthttp.Client, ctx context.Context) (*lofthttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *lofthttp.Client, ctx context.Context) (*lofthttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *lofthttp.Client, ctx context.Context) (*lofthttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := lofthttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++
		if attempts < 3 {
			writer.WriteHeader(http.StatusInternalServerError)
		} else {
			writer.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := lofthttp.NewClient(server.URL, nil,
		lofthttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

	resp, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestClient_Cache(t *testing.T) {
	t.Parallel()

	hits := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		hits++
		_ = json.NewEncoder(writer).Encode(map[string]string{"name": "app1"})
	}))
	defer server.Close()

	cache := loft.NewMemoryCache(10)
	client := lofthttp.NewClient(server.URL, nil, lofthttp.WithCache(cache, time.Minute))

	first, err := client.Get(context.Background(), "/api/registry/v1alpha1/apps/app1", nil)
	require.NoError(t, err)

	second, err := client.Get(context.Background(), "/api/registry/v1alpha1/apps/app1", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first.Body, second.Body)

	// Writes are never cached.
	_, err = client.Post(context.Background(), "/api/registry/v1alpha1/apps/app1", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	metrics := lofthttp.NewMetrics(registry)
	client := lofthttp.NewClient(server.URL, nil, lofthttp.WithMetrics(metrics))

	_, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)

	count := testutil.CollectAndCount(registry, "loft_client_requests_total")
	assert.Equal(t, 1, count)
}
