package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/internal/auth"
)

func TestNone(t *testing.T) {
	t.Parallel()

	credentials, err := auth.None{}.ProvideToken(context.Background())
	require.NoError(t, err)
	assert.Nil(t, credentials)
}

func TestStaticBearer(t *testing.T) {
	t.Parallel()

	provider := &auth.StaticBearer{Token: "tok"}

	credentials, err := provider.ProvideToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", credentials.Bearer)
	assert.Nil(t, credentials.Basic)
}

func TestAccessToken(t *testing.T) {
	t.Parallel()

	provider := &auth.AccessToken{UserID: "user-a", Token: "tkn-secret"}

	credentials, err := provider.ProvideToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, credentials.Bearer)
	require.NotNil(t, credentials.Basic)
	assert.Equal(t, "user-a", credentials.Basic.Username)
	assert.Equal(t, "tkn-secret", credentials.Basic.Password)
}

func TestOAuth2(t *testing.T) {
	t.Parallel()

	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests++

		require.NoError(t, request.ParseForm())
		assert.Equal(t, "client_credentials", request.Form.Get("grant_type"))

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]interface{}{
			"access_token": "issued-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := auth.NewOAuth2("client-id", "client-secret", server.URL+"/token", nil)

	credentials, err := provider.ProvideToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issued-token", credentials.Bearer)

	// The token source caches unexpired tokens.
	_, err = provider.ProvideToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}
