package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

const tokensBase = "/api/tokens/v1alpha1"

// TokensClient implements loft.TokensClient.
type TokensClient struct {
	http *lofthttp.Client
}

// List returns the access tokens of the current user. Token values are not
// included, only prefixes.
func (c *TokensClient) List(ctx context.Context) ([]loft.AccessToken, error) {
	resp, err := c.http.Get(ctx, tokensBase, nil)
	if err != nil {
		return nil, fmt.Errorf("listing access tokens: %w", err)
	}

	var tokens []loft.AccessToken
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return nil, fmt.Errorf("decoding access token list: %w", err)
	}

	return tokens, nil
}

// Create issues a new access token. The returned token value is only
// available here; later listings show the prefix alone.
func (c *TokensClient) Create(ctx context.Context, opts *loft.AccessTokenCreationOptions) (*loft.CreatedAccessToken, error) {
	path := tokensBase
	if opts != nil && opts.Description != "" {
		path += "?" + url.Values{"description": []string{opts.Description}}.Encode()
	}

	resp, err := c.http.Post(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating access token: %w", err)
	}

	var created loft.CreatedAccessToken
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, fmt.Errorf("decoding created access token: %w", err)
	}

	return &created, nil
}

// Delete revokes the access token with the given prefix.
func (c *TokensClient) Delete(ctx context.Context, prefix string) error {
	if _, err := c.http.Delete(ctx, tokensBase+"/"+url.PathEscape(prefix)); err != nil {
		return fmt.Errorf("deleting access token %q: %w", prefix, err)
	}

	return nil
}
