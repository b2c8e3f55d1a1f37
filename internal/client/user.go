package client

import (
	"context"
	"encoding/json"
	"fmt"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

const userBase = "/api/user/v1alpha1"

// UserClient implements loft.UserClient.
type UserClient struct {
	http *lofthttp.Client
}

// AuthenticateAccessToken verifies an access token against the user service.
func (c *UserClient) AuthenticateAccessToken(ctx context.Context, request loft.AuthenticationRequest) (*loft.AuthenticationResponse, error) {
	resp, err := c.http.Post(ctx, userBase+"/authn", request)
	if err != nil {
		return nil, fmt.Errorf("authenticating access token: %w", err)
	}

	var outcome loft.AuthenticationResponse
	if err := json.Unmarshal(resp.Body, &outcome); err != nil {
		return nil, fmt.Errorf("decoding authentication response: %w", err)
	}

	if metrics := c.http.Metrics(); metrics != nil {
		metrics.ObserveOutcome("authn", string(outcome.Outcome))
	}

	return &outcome, nil
}

// AuthorizeAccess asks whether a user holds a role on an application.
func (c *UserClient) AuthorizeAccess(ctx context.Context, request loft.AuthorizationRequest) (*loft.AuthorizationResponse, error) {
	resp, err := c.http.Post(ctx, userBase+"/authz", request)
	if err != nil {
		return nil, fmt.Errorf("authorizing access: %w", err)
	}

	var outcome loft.AuthorizationResponse
	if err := json.Unmarshal(resp.Body, &outcome); err != nil {
		return nil, fmt.Errorf("decoding authorization response: %w", err)
	}

	if metrics := c.http.Metrics(); metrics != nil {
		metrics.ObserveOutcome("authz", string(outcome.Outcome))
	}

	return &outcome, nil
}

// WhoAmI returns the details of the currently authenticated user.
func (c *UserClient) WhoAmI(ctx context.Context) (*loft.UserDetails, error) {
	resp, err := c.http.Get(ctx, userBase+"/whoami", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching user details: %w", err)
	}

	var details loft.UserDetails
	if err := json.Unmarshal(resp.Body, &details); err != nil {
		return nil, fmt.Errorf("decoding user details: %w", err)
	}

	return &details, nil
}
