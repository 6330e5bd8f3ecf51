package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "80", cfg.ServicePort)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "https://api.sigfox.com/v2", cfg.DeviceProvisioning.Sigfox.NetworkServer)
	assert.Equal(t, StoreRedis, cfg.CredentialStore.Kind)
	assert.Equal(t, "redis:6379", cfg.CredentialStore.Host)
}

func TestLoadJSONConfigurationFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"device_provisioning": {"sigfox": {"network_server": "http://sigfox.local"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://sigfox.local", cfg.DeviceProvisioning.Sigfox.NetworkServer)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
service_port: "8080"
credential_store:
  kind: postgres
  host: db
`)
	t.Setenv("SERVICE_PORT", "9090")
	t.Setenv("CREDENTIAL_STORE_HOST", "postgres.local")
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServicePort)
	assert.Equal(t, StorePostgres, cfg.CredentialStore.Kind)
	assert.Equal(t, "postgres.local", cfg.CredentialStore.Host)
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestLoadRejectsEmptyNetworkServer(t *testing.T) {
	t.Setenv("SIGFOX_NETWORK_SERVER", "")

	_, err := Load("")
	assert.True(t, errors.Is(err, ErrMissingNetworkServer))
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "etcd")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
