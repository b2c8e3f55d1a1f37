package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
)

const commandBase = "/api/command/v1alpha1"

// CommandClient implements loft.CommandClient.
type CommandClient struct {
	http *lofthttp.Client
}

// PublishCommand sends a one-way command to a device. The payload is sent
// as the request body and may be nil.
func (c *CommandClient) PublishCommand(ctx context.Context, application, device, command string, payload []byte) error {
	path := commandBase + "/apps/" + url.PathEscape(application) +
		"/devices/" + url.PathEscape(device)

	req := &lofthttp.Request{
		Method: "POST",
		Path:   path,
		Query:  url.Values{"command": []string{command}},
	}

	if payload != nil {
		req.Body = json.RawMessage(payload)
	}

	if _, err := c.http.Do(ctx, req); err != nil {
		return fmt.Errorf("publishing command %q to %s/%s: %w", command, application, device, err)
	}

	return nil
}
