package sigfox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

func TestCreateDevicesPostsRegistration(t *testing.T) {
	var received models.DeviceRegistration

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/devicetypes/type1/devices/bulk/create/async", r.URL.Path)

		user, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api-user", user)
		assert.Equal(t, "secret", password)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"jobId": "job-1", "total": 1, "transferFailed": []}`))
	}))
	defer server.Close()

	registration := models.DeviceRegistration{
		Prefix:             "dojot-sigfox-",
		IDs:                []models.SigfoxDeviceID{{ID: "dev1", PAC: "PAC1"}},
		ProductCertificate: "P_0001",
	}

	response, err := NewClient(server.URL+"/").CreateDevices(context.Background(), "type1", registration,
		Credentials{Username: "api-user", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", response.JobID)
	assert.Equal(t, 1, response.Total)
	assert.Equal(t, registration, received)
}

func TestEditDevicesPostsBulkEnvelope(t *testing.T) {
	var body map[string][]map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/devices/bulk/edit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"total": 1, "error": 0, "log": []}`))
	}))
	defer server.Close()

	lat, lng := "12.5", "-38.2"
	editions := []models.DeviceEdition{
		{ID: "dev1", DeviceTypeID: "type1", Lat: &lat, Lng: &lng},
		{ID: "dev2", DeviceTypeID: "type1"},
	}

	response, err := NewClient(server.URL).EditDevices(context.Background(), editions, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)

	require.Len(t, body["data"], 2)
	assert.Equal(t, "12.5", body["data"][0]["lat"])
	assert.NotContains(t, body["data"][1], "lat")
	assert.NotContains(t, body["data"][1], "lng")
	assert.NotContains(t, body["data"][1], "name")
}

func TestRejectedRequestReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "Access denied"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).EditDevices(context.Background(), nil, Credentials{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamRejected))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Access denied", apiErr.Message)
}

func TestUnreachableServerIsNotAnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewClient(server.URL).CreateDevices(context.Background(), "type1", models.DeviceRegistration{}, Credentials{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstreamRejected))
}

func TestEmptyResponseBodyIsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	response, err := NewClient(server.URL).EditDevices(context.Background(), nil, Credentials{})
	require.NoError(t, err)
	assert.Zero(t, response.Total)
}
