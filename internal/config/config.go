package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const apiURLEnv = "STUDENTS_API_URL"

// Path is the location of the optional YAML config file.
type Path string

type Config struct {
	API     API     `yaml:"api"`
	Web     Web     `yaml:"web"`
	Storage Storage `yaml:"storage"`
}

type API struct {
	BaseURL            string `yaml:"base_url"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type Web struct {
	Port            int           `yaml:"port"`
	SessionLifetime time.Duration `yaml:"session_lifetime"`
}

type Storage struct {
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		API: API{
			BaseURL: "https://localhost:7247",
		},
		Web: Web{
			Port:            8123,
			SessionLifetime: 24 * time.Hour,
		},
		Storage: Storage{
			Path: defaultStoragePath(),
		},
	}
}

// New builds the config from defaults, the YAML file at p (if any) and the
// environment, in that order.
func New(p Path) (*Config, error) {
	cfg := Default()

	if p != "" {
		if err := cfg.loadFile(string(p)); err != nil {
			return nil, err
		}
	}

	if env := os.Getenv(apiURLEnv); env != "" {
		cfg.API.BaseURL = env
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "students", "session.json")
}
