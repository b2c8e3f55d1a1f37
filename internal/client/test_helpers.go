package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
)

// NewTestClient creates a client without authentication for tests.
func NewTestClient(baseURL string) *Client {
	return New(Options{HTTP: lofthttp.NewClient(baseURL, nil)})
}

// testEndpoint describes one expected request and its canned response.
type testEndpoint struct {
	Method string
	Path   string
	Status int
	Body   interface{}
}

// newTestServer serves canned responses and fails the test on unexpected
// requests.
func newTestServer(t *testing.T, endpoints ...testEndpoint) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		for _, endpoint := range endpoints {
			if request.Method != endpoint.Method || request.URL.Path != endpoint.Path {
				continue
			}

			status := endpoint.Status
			if status == 0 {
				status = http.StatusOK
			}

			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(status)

			if endpoint.Body != nil {
				assert.NoError(t, json.NewEncoder(writer).Encode(endpoint.Body))
			}

			return
		}

		t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		writer.WriteHeader(http.StatusTeapot)
	}))
}
