package sigfox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//ErrUpstreamRejected is wrapped by every APIError
var ErrUpstreamRejected = errors.New("sigfox api rejected the request")

//APIError is returned when the Sigfox API answers with a non successful status code
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", ErrUpstreamRejected.Error(), e.StatusCode, e.Message)
}

//Unwrap allows errors.Is(err, ErrUpstreamRejected)
func (e *APIError) Unwrap() error {
	return ErrUpstreamRejected
}

//Client is the subset of the Sigfox bulk API used by the agent
type Client interface {
	CreateDevices(ctx context.Context, deviceTypeID string, registration models.DeviceRegistration, creds Credentials) (*DeviceRegistrationResponse, error)
	EditDevices(ctx context.Context, editions []models.DeviceEdition, creds Credentials) (*DeviceEditionResponse, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

//NewClient creates a client for the Sigfox API found at baseURL
func NewClient(baseURL string) Client {
	return &client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *client) CreateDevices(ctx context.Context, deviceTypeID string, registration models.DeviceRegistration, creds Credentials) (*DeviceRegistrationResponse, error) {
	path := fmt.Sprintf("/api/devicetypes/%s/devices/bulk/create/async", url.PathEscape(deviceTypeID))

	respBody, err := c.doRequest(ctx, http.MethodPost, path, registration, creds)
	if err != nil {
		return nil, err
	}

	response := &DeviceRegistrationResponse{}
	if err := decodeOptional(respBody, response); err != nil {
		return nil, err
	}

	return response, nil
}

func (c *client) EditDevices(ctx context.Context, editions []models.DeviceEdition, creds Credentials) (*DeviceEditionResponse, error) {
	respBody, err := c.doRequest(ctx, http.MethodPost, "/api/devices/bulk/edit", DeviceEditionRequest{Data: editions}, creds)
	if err != nil {
		return nil, err
	}

	response := &DeviceEditionResponse{}
	if err := decodeOptional(respBody, response); err != nil {
		return nil, err
	}

	return response, nil
}

func (c *client) doRequest(ctx context.Context, method, path string, body interface{}, creds Credentials) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(creds.Username, creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

func decodeOptional(body []byte, target interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
