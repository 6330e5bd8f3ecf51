//Package dojot talks to the platform services: the tenant and device directory
//over HTTP and device attribute updates over the message broker.
package dojot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//Directory lists tenants and devices known to the platform
type Directory interface {
	ListTenants(ctx context.Context) ([]string, error)
	ListDevices(ctx context.Context, tenant string) ([]string, error)
	GetDevice(ctx context.Context, deviceID, tenant string) (*models.Device, error)
}

type directory struct {
	authURL          string
	deviceManagerURL string
	httpClient       *http.Client
}

type tenantsResponse struct {
	Tenants []string `json:"tenants"`
}

//NewDirectory creates a directory backed by the auth and device manager services
func NewDirectory(authURL, deviceManagerURL string) Directory {
	return &directory{
		authURL:          strings.TrimSuffix(authURL, "/"),
		deviceManagerURL: strings.TrimSuffix(deviceManagerURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (d *directory) ListTenants(ctx context.Context) ([]string, error) {
	response := tenantsResponse{}
	if err := d.get(ctx, d.authURL+"/admin/tenants", "", &response); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return response.Tenants, nil
}

func (d *directory) ListDevices(ctx context.Context, tenant string) ([]string, error) {
	ids := []string{}
	if err := d.get(ctx, d.deviceManagerURL+"/device?idsOnly=true", tenant, &ids); err != nil {
		return nil, fmt.Errorf("failed to list devices of tenant %s: %w", tenant, err)
	}
	return ids, nil
}

func (d *directory) GetDevice(ctx context.Context, deviceID, tenant string) (*models.Device, error) {
	device := &models.Device{}
	if err := d.get(ctx, d.deviceManagerURL+"/device/"+url.PathEscape(deviceID), tenant, device); err != nil {
		return nil, fmt.Errorf("failed to get device %s of tenant %s: %w", deviceID, tenant, err)
	}
	return device, nil
}

func (d *directory) get(ctx context.Context, target, tenant string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	if tenant != "" {
		token, err := NewTenantToken(tenant)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, result)
}
