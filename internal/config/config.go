package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the persisted squeezectl settings.
type Config struct {
	Server ServerConfig `toml:"server"`
}

// ServerConfig names the SqueezeBox server to talk to.
type ServerConfig struct {
	URL string `toml:"url"`
}

const (
	defaultConfigPath = "~/.config/squeezectl/config.toml"
	defaultServerURL  = "http://localhost:9000"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config from the given path (empty uses the default),
// falling back to defaults when the file is missing or unreadable. A broken
// config never blocks the CLI; the worst case is the built-in server URL.
func Load(path string) Config {
	cfg := Config{Server: ServerConfig{URL: defaultServerURL}}

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg
	}

	file, err := os.Open(resolved)
	if err != nil {
		return cfg
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return cfg
	}

	var raw Config
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return cfg
	}

	if url := strings.TrimSpace(raw.Server.URL); url != "" {
		cfg.Server.URL = url
	}
	return cfg
}

// Save writes the config to the given path (empty uses the default),
// creating directories as needed.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	bytes, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ServerURL returns override when set, otherwise the configured (or default)
// server URL. The CLI's --server flag flows through here.
func ServerURL(override, configPath string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	return Load(configPath).Server.URL
}

// SaveServerURL persists a new server URL, preserving everything else in the
// config file.
func SaveServerURL(configPath, serverURL string) error {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		return errors.New("server url is empty")
	}
	cfg := Load(configPath)
	cfg.Server.URL = trimmed
	return Save(configPath, cfg)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
