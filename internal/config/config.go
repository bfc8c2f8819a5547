package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "tapnode"
	configFile = "config.yaml"

	// SchemaVersion is the config file schema this build reads and writes.
	SchemaVersion = 1
)

// Defaults mirrored from the device firmware.
const (
	DefaultPort              = 8080
	DefaultMDNSName          = "tapnode"
	DefaultMDNSInstance      = "Tapnode device agent"
	DefaultNetworkTimeoutSec = 10
	DefaultLEDPath           = "/sys/class/leds/status/brightness"
)

// Config is the agent configuration.
type Config struct {
	// Version is the schema version of the file. Files with an
	// unknown version are rejected rather than half-parsed.
	Version int `yaml:"version"`

	// Port is the TCP port of the local control server.
	Port int `yaml:"port"`

	// MDNS controls the _http._tcp advertisement.
	MDNS MDNSConfig `yaml:"mdns"`

	// LEDPath is the brightness file of the status LED. Empty selects
	// the in-memory driver (no hardware access).
	LEDPath string `yaml:"led_path"`

	// NetworkTimeoutSec bounds the wait for a routable address at
	// boot, in seconds.
	NetworkTimeoutSec int `yaml:"network_timeout"`
}

// MDNSConfig controls the mDNS advertisement of the control server.
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Name     string `yaml:"name"`
	Instance string `yaml:"instance"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Version: SchemaVersion,
		Port:    DefaultPort,
		MDNS: MDNSConfig{
			Enabled:  true,
			Name:     DefaultMDNSName,
			Instance: DefaultMDNSInstance,
		},
		LEDPath:           DefaultLEDPath,
		NetworkTimeoutSec: DefaultNetworkTimeoutSec,
	}
}

// Dir returns the OS-appropriate configuration directory for the agent.
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			return filepath.Join(userProfile, "AppData", "Local", appName), nil
		}
		return filepath.Join(localAppData, appName), nil

	default:
		// Linux, macOS and other Unix-like systems: XDG_CONFIG_HOME
		// or $HOME/.config
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// Path returns the full path of the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// NetworkTimeout returns NetworkTimeoutSec as a time.Duration.
func (c *Config) NetworkTimeout() time.Duration {
	return time.Duration(c.NetworkTimeoutSec) * time.Second
}

// Load reads the configuration from path. An empty path selects the
// platform default location. A missing file yields a default Config;
// an unreadable or unsupported file yields an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, SchemaVersion)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero-valued fields after a partial file parse.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MDNS.Name == "" {
		c.MDNS.Name = DefaultMDNSName
	}
	if c.MDNS.Instance == "" {
		c.MDNS.Instance = DefaultMDNSInstance
	}
	if c.NetworkTimeoutSec == 0 {
		c.NetworkTimeoutSec = DefaultNetworkTimeoutSec
	}
}

// Save writes the configuration to path atomically, creating the parent
// directory when necessary. An empty path selects the platform default
// location.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Tapnode Agent Configuration File
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
