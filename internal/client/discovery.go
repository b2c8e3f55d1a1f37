package client

import (
	"context"
	"encoding/json"
	"fmt"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

// Well-known discovery documents.
const (
	endpointsPath   = "/.well-known/loft-endpoints"
	versionPath     = "/.well-known/loft-version"
	consoleInfoPath = "/api/console/v1alpha1/info"
)

// DiscoveryClient implements loft.DiscoveryClient.
type DiscoveryClient struct {
	http *lofthttp.Client
}

// Endpoints fetches the public endpoint document.
func (c *DiscoveryClient) Endpoints(ctx context.Context) (*loft.Endpoints, error) {
	resp, err := c.http.Get(ctx, endpointsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching endpoints: %w", err)
	}

	var endpoints loft.Endpoints
	if err := json.Unmarshal(resp.Body, &endpoints); err != nil {
		return nil, fmt.Errorf("decoding endpoints: %w", err)
	}

	return &endpoints, nil
}

// ConsoleInfo fetches the endpoint document of the authenticated console
// API.
func (c *DiscoveryClient) ConsoleInfo(ctx context.Context) (*loft.Endpoints, error) {
	resp, err := c.http.Get(ctx, consoleInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching console info: %w", err)
	}

	var endpoints loft.Endpoints
	if err := json.Unmarshal(resp.Body, &endpoints); err != nil {
		return nil, fmt.Errorf("decoding console info: %w", err)
	}

	return &endpoints, nil
}

// Version fetches the platform version document.
func (c *DiscoveryClient) Version(ctx context.Context) (*loft.PlatformVersion, error) {
	resp, err := c.http.Get(ctx, versionPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching platform version: %w", err)
	}

	var version loft.PlatformVersion
	if err := json.Unmarshal(resp.Body, &version); err != nil {
		return nil, fmt.Errorf("decoding platform version: %w", err)
	}

	return &version, nil
}
