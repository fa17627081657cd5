package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
// The API credential may be supplied through the environment instead of
// the file; the environment wins when both are present.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	loaded := Loaded{Path: resolvedPath, Exists: true}

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}
		loaded.Exists = false
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	} else if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Loaded{}, fmt.Errorf("validate config %q: %w", resolvedPath, err)
	}

	loaded.Config = cfg
	return loaded, nil
}

// applyEnvOverrides layers credential environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv("VOXD_API_KEY")); key != "" {
		cfg.API.Key = key
		return
	}
	if cfg.API.Key == "" {
		if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
			cfg.API.Key = key
		}
	}
}

// validate rejects configurations the daemon cannot run with.
func validate(cfg Config) error {
	if strings.TrimSpace(cfg.API.Endpoint) == "" {
		return errors.New("api.endpoint must not be empty")
	}
	if strings.TrimSpace(cfg.API.Model) == "" {
		return errors.New("api.model must not be empty")
	}
	if cfg.Capture.Enable && strings.TrimSpace(cfg.Capture.Binary) == "" {
		return errors.New("capture.binary must be set when capture.enable is true")
	}
	return nil
}
