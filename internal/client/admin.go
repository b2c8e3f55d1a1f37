package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

const adminBase = "/api/admin/v1alpha1"

// AdminClient implements loft.AdminClient.
type AdminClient struct {
	http *lofthttp.Client
}

func adminAppPath(application, suffix string) string {
	return adminBase + "/apps/" + url.PathEscape(application) + suffix
}

// GetMembers fetches the membership list, returning nil when the
// application does not exist.
func (c *AdminClient) GetMembers(ctx context.Context, application string) (*loft.Members, error) {
	resp, err := c.http.Get(ctx, adminAppPath(application, "/members"), nil)
	if loft.IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetching members of %q: %w", application, err)
	}

	var members loft.Members
	if err := json.Unmarshal(resp.Body, &members); err != nil {
		return nil, fmt.Errorf("decoding members of %q: %w", application, err)
	}

	return &members, nil
}

// SetMembers replaces the membership list. The resource version carried in
// members guards against concurrent modification.
func (c *AdminClient) SetMembers(ctx context.Context, application string, members loft.Members) error {
	if _, err := c.http.Put(ctx, adminAppPath(application, "/members"), members); err != nil {
		return fmt.Errorf("updating members of %q: %w", application, err)
	}

	return nil
}

// TransferOwnership initiates handing the application over to newUser.
func (c *AdminClient) TransferOwnership(ctx context.Context, application, newUser string) error {
	body := loft.TransferOwnership{NewUser: newUser}
	if _, err := c.http.Put(ctx, adminAppPath(application, "/transfer-ownership"), body); err != nil {
		return fmt.Errorf("initiating ownership transfer of %q: %w", application, err)
	}

	return nil
}

// CancelTransfer aborts a pending ownership transfer.
func (c *AdminClient) CancelTransfer(ctx context.Context, application string) error {
	if _, err := c.http.Delete(ctx, adminAppPath(application, "/transfer-ownership")); err != nil {
		return fmt.Errorf("cancelling ownership transfer of %q: %w", application, err)
	}

	return nil
}

// ReadTransferState fetches the pending transfer, returning nil when none
// is in progress.
func (c *AdminClient) ReadTransferState(ctx context.Context, application string) (*loft.TransferOwnership, error) {
	resp, err := c.http.Get(ctx, adminAppPath(application, "/transfer-ownership"), nil)
	if loft.IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading transfer state of %q: %w", application, err)
	}

	var transfer loft.TransferOwnership
	if err := json.Unmarshal(resp.Body, &transfer); err != nil {
		return nil, fmt.Errorf("decoding transfer state of %q: %w", application, err)
	}

	return &transfer, nil
}

// AcceptOwnership completes a transfer initiated towards the current user.
func (c *AdminClient) AcceptOwnership(ctx context.Context, application string) error {
	if _, err := c.http.Put(ctx, adminAppPath(application, "/accept-ownership"), nil); err != nil {
		return fmt.Errorf("accepting ownership of %q: %w", application, err)
	}

	return nil
}
