//Package config loads the agent configuration from an optional YAML (or JSON)
//file and the environment. Environment variables take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//Credential store kinds
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

//ErrMissingNetworkServer is returned when no Sigfox network server has been configured
var ErrMissingNetworkServer = errors.New("missing sigfox network server configuration")

//Config is the complete agent configuration
type Config struct {
	ServicePort string `yaml:"service_port"`
	LogLevel    string `yaml:"log_level"`
	WorkerCount int    `yaml:"worker_count"`

	DeviceProvisioning struct {
		Sigfox struct {
			NetworkServer string `yaml:"network_server"`
		} `yaml:"sigfox"`
	} `yaml:"device_provisioning"`

	Dojot struct {
		AuthURL          string `yaml:"auth_url"`
		DeviceManagerURL string `yaml:"device_manager_url"`
	} `yaml:"dojot"`

	CredentialStore struct {
		Kind     string `yaml:"kind"`
		Host     string `yaml:"host"`
		User     string `yaml:"user"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"credential_store"`
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

//Load reads the configuration file at path, if any, and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnvironment() {
	cfg.ServicePort = getEnv("SERVICE_PORT", orDefault(cfg.ServicePort, "80"))
	cfg.LogLevel = getEnv("LOG_LEVEL", orDefault(cfg.LogLevel, "info"))

	workers := getEnv("WORKER_COUNT", "")
	if n, err := strconv.Atoi(workers); err == nil {
		cfg.WorkerCount = n
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 8
	}

	sigfox := &cfg.DeviceProvisioning.Sigfox
	sigfox.NetworkServer = getEnv("SIGFOX_NETWORK_SERVER", orDefault(sigfox.NetworkServer, "https://api.sigfox.com/v2"))

	cfg.Dojot.AuthURL = getEnv("DOJOT_AUTH_URL", orDefault(cfg.Dojot.AuthURL, "http://auth:5000"))
	cfg.Dojot.DeviceManagerURL = getEnv("DOJOT_DEVICE_MANAGER_URL", orDefault(cfg.Dojot.DeviceManagerURL, "http://device-manager:5000"))

	store := &cfg.CredentialStore
	store.Kind = getEnv("CREDENTIAL_STORE", orDefault(store.Kind, StoreRedis))
	store.Host = getEnv("CREDENTIAL_STORE_HOST", orDefault(store.Host, "redis:6379"))
	store.User = getEnv("CREDENTIAL_DB_USER", store.User)
	store.Name = getEnv("CREDENTIAL_DB_NAME", store.Name)
	store.Password = getEnv("CREDENTIAL_DB_PASSWORD", store.Password)
	store.SSLMode = getEnv("CREDENTIAL_DB_SSLMODE", orDefault(store.SSLMode, "require"))
}

//Validate checks that the configuration can be used to start the agent
func (cfg *Config) Validate() error {
	if cfg.DeviceProvisioning.Sigfox.NetworkServer == "" {
		return ErrMissingNetworkServer
	}

	switch cfg.CredentialStore.Kind {
	case StoreRedis, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unsupported credential store %q", cfg.CredentialStore.Kind)
	}

	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
