// Package config loads optional run configuration from a YAML file.
// Precedence everywhere is: command-line flag > config file > built-in
// default. A missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/confpush/confpush/pkg/platform"
)

// Duration wraps time.Duration so YAML values can be written as "30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds run defaults an operator rarely changes per invocation.
type Config struct {
	// Username overrides the OS-user default login name.
	Username string `yaml:"username,omitempty"`

	// EnableSecret overrides the enable password (default: login password).
	EnableSecret string `yaml:"enable_secret,omitempty"`

	// LogPath is where the JSON-lines run log is written.
	LogPath string `yaml:"log_path,omitempty"`

	// ConnectTimeout bounds dialing and login per device.
	ConnectTimeout Duration `yaml:"connect_timeout,omitempty"`

	// CommandTimeout bounds each command's wait for the prompt.
	CommandTimeout Duration `yaml:"command_timeout,omitempty"`

	// PromptTimeout is the quiet period used for prompt auto-detection.
	PromptTimeout Duration `yaml:"prompt_timeout,omitempty"`

	// Ports maps an os_type to a non-standard management port.
	Ports map[string]int `yaml:"ports,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogPath:        "confpush.log",
		ConnectTimeout: Duration(10 * time.Second),
		CommandTimeout: Duration(60 * time.Second),
		PromptTimeout:  Duration(3 * time.Second),
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "confpush.yaml"
	}
	return filepath.Join(home, ".confpush", "config.yaml")
}

// Load reads the config file at path over the built-in defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// PortFor returns the management port for a dialect, honoring per-platform
// overrides from the config file.
func (c *Config) PortFor(d *platform.Dialect) int {
	if p, ok := c.Ports[string(d.OSType)]; ok && p > 0 {
		return p
	}
	return d.DefaultPort
}
