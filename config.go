package transit

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"cybus.dev/transit/arrivals"
	"cybus.dev/transit/fetcher"
)

// Config is the full service configuration. Zero values fall back to
// the defaults below, so a config file only needs to state what it
// changes.
type Config struct {
	// DataDir holds the downloaded per-city archives and, with the
	// sqlite driver, the database file.
	DataDir string `yaml:"data_dir" validate:"required"`

	Storage StorageConfig `yaml:"storage"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Live    LiveConfig    `yaml:"live"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`

	// DSN is the database path for sqlite or the connection string
	// for postgres.
	DSN string `yaml:"dsn" validate:"required"`
}

type FetchConfig struct {
	// Cities maps city id to archive URL. Empty means the built-in
	// registry.
	Cities map[string]string `yaml:"cities"`

	TimeoutSeconds int `yaml:"timeoutSeconds" validate:"min=0"`
	Workers        int `yaml:"workers" validate:"min=0"`
}

type LiveConfig struct {
	BaseURL        string `yaml:"baseURL" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" validate:"min=0"`
}

func DefaultConfig() Config {
	return Config{
		DataDir: "data",
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "data/transit.db",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: int(fetcher.DefaultTimeout / time.Second),
			Workers:        fetcher.DefaultWorkers,
		},
		Live: LiveConfig{
			BaseURL:        arrivals.DefaultBaseURL,
			TimeoutSeconds: int(arrivals.DefaultTimeout / time.Second),
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty
// path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
