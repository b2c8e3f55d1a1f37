package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	lofthttp "github.com/loft-iot/loft-client/internal/http"
	"github.com/loft-iot/loft-client/pkg/loft"
)

const registryBase = "/api/registry/v1alpha1"

// deviceFetchConcurrency bounds the parallel lookups in GetDevices.
const deviceFetchConcurrency = 8

// RegistryClient implements loft.RegistryClient.
type RegistryClient struct {
	http *lofthttp.Client
}

func appPath(name string) string {
	return registryBase + "/apps/" + url.PathEscape(name)
}

func devicePath(application, name string) string {
	return appPath(application) + "/devices/" + url.PathEscape(name)
}

// GetApplication fetches a single application, returning nil when it does
// not exist.
func (c *RegistryClient) GetApplication(ctx context.Context, name string) (*loft.Application, error) {
	resp, err := c.http.Get(ctx, appPath(name), nil)
	if loft.IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetching application %q: %w", name, err)
	}

	var app loft.Application
	if err := json.Unmarshal(resp.Body, &app); err != nil {
		return nil, fmt.Errorf("decoding application %q: %w", name, err)
	}

	return &app, nil
}

// ListApplications lists applications visible to the current user.
func (c *RegistryClient) ListApplications(ctx context.Context, opts *loft.ListOptions) ([]loft.Application, error) {
	resp, err := c.http.Get(ctx, registryBase+"/apps", opts.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	var apps []loft.Application
	if err := json.Unmarshal(resp.Body, &apps); err != nil {
		return nil, fmt.Errorf("decoding application list: %w", err)
	}

	return apps, nil
}

// CreateApplication creates a new application.
func (c *RegistryClient) CreateApplication(ctx context.Context, app *loft.Application) error {
	if _, err := c.http.Post(ctx, registryBase+"/apps", app); err != nil {
		return fmt.Errorf("creating application %q: %w", app.Metadata.Name, err)
	}

	return nil
}

// UpdateApplication replaces an existing application.
func (c *RegistryClient) UpdateApplication(ctx context.Context, app *loft.Application) error {
	if _, err := c.http.Put(ctx, appPath(app.Metadata.Name), app); err != nil {
		return fmt.Errorf("updating application %q: %w", app.Metadata.Name, err)
	}

	return nil
}

// DeleteApplication deletes an application.
func (c *RegistryClient) DeleteApplication(ctx context.Context, name string) error {
	if _, err := c.http.Delete(ctx, appPath(name)); err != nil {
		return fmt.Errorf("deleting application %q: %w", name, err)
	}

	return nil
}

// GetDevice fetches a single device, returning nil when it does not exist.
func (c *RegistryClient) GetDevice(ctx context.Context, application, name string) (*loft.Device, error) {
	resp, err := c.http.Get(ctx, devicePath(application, name), nil)
	if loft.IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetching device %s/%s: %w", application, name, err)
	}

	var device loft.Device
	if err := json.Unmarshal(resp.Body, &device); err != nil {
		return nil, fmt.Errorf("decoding device %s/%s: %w", application, name, err)
	}

	return &device, nil
}

// GetDevices fetches several devices concurrently. Devices that do not
// exist are silently left out; result order is not guaranteed.
func (c *RegistryClient) GetDevices(ctx context.Context, application string, names ...string) ([]loft.Device, error) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(deviceFetchConcurrency)

	var (
		mu      sync.Mutex
		devices []loft.Device
	)

	for _, name := range names {
		group.Go(func() error {
			device, err := c.GetDevice(ctx, application, name)
			if err != nil {
				return err
			}

			if device == nil {
				return nil
			}

			mu.Lock()
			devices = append(devices, *device)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return devices, nil
}

// GetDeviceAndGateways fetches a device and, when it carries a gateway
// selector, the gateway devices it names.
func (c *RegistryClient) GetDeviceAndGateways(ctx context.Context, application, name string) (*loft.Device, []loft.Device, error) {
	device, err := c.GetDevice(ctx, application, name)
	if err != nil || device == nil {
		return device, nil, err
	}

	selector, present, err := loft.SectionOf[loft.DeviceSpecGatewaySelector](device)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding gateway selector of %s/%s: %w", application, name, err)
	}

	if !present || len(selector.MatchNames) == 0 {
		return device, nil, nil
	}

	gateways, err := c.GetDevices(ctx, application, selector.MatchNames...)
	if err != nil {
		return nil, nil, err
	}

	return device, gateways, nil
}

// ListDevices lists the devices of an application.
func (c *RegistryClient) ListDevices(ctx context.Context, application string, opts *loft.ListOptions) ([]loft.Device, error) {
	resp, err := c.http.Get(ctx, appPath(application)+"/devices", opts.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing devices of %q: %w", application, err)
	}

	var devices []loft.Device
	if err := json.Unmarshal(resp.Body, &devices); err != nil {
		return nil, fmt.Errorf("decoding device list: %w", err)
	}

	return devices, nil
}

// CreateDevice creates a new device.
func (c *RegistryClient) CreateDevice(ctx context.Context, device *loft.Device) error {
	path := appPath(device.Metadata.Application) + "/devices"
	if _, err := c.http.Post(ctx, path, device); err != nil {
		return fmt.Errorf("creating device %s/%s: %w",
			device.Metadata.Application, device.Metadata.Name, err)
	}

	return nil
}

// UpdateDevice replaces an existing device.
func (c *RegistryClient) UpdateDevice(ctx context.Context, device *loft.Device) error {
	path := devicePath(device.Metadata.Application, device.Metadata.Name)
	if _, err := c.http.Put(ctx, path, device); err != nil {
		return fmt.Errorf("updating device %s/%s: %w",
			device.Metadata.Application, device.Metadata.Name, err)
	}

	return nil
}

// DeleteDevice deletes a device.
func (c *RegistryClient) DeleteDevice(ctx context.Context, application, name string) error {
	if _, err := c.http.Delete(ctx, devicePath(application, name)); err != nil {
		return fmt.Errorf("deleting device %s/%s: %w", application, name, err)
	}

	return nil
}
