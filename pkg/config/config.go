package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config is bsearch's TOML configuration.
type Config struct {
	// BaseURL is the site's public base URL, prefixed to site-relative
	// result links.
	BaseURL string `toml:"base_url"`

	// IndexLocation is where the search-index payload lives: an HTTP(S)
	// URL or a local file path. Defaults to <base_url>/search-index.json.
	IndexLocation string `toml:"index_location,omitempty"`

	// PostsDir is the markdown post tree the `index` command reads.
	PostsDir string `toml:"posts_dir"`

	// Listen is the web server's host:port.
	Listen string `toml:"listen"`

	// Debounce is the quiet interval applied to live-search keystrokes
	// and payload-file reloads.
	Debounce Duration `toml:"debounce"`

	// Watch enables reloading when a local payload file changes.
	Watch bool `toml:"watch"`
}

// Duration wraps time.Duration for TOML round-tripping.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// DefaultDebounce is used when the config does not set one.
const DefaultDebounce = 250 * time.Millisecond

// GetDefaultConfig returns a config with sensible defaults.
func GetDefaultConfig() *Config {
	return &Config{
		BaseURL:  "https://example.com",
		PostsDir: "posts",
		Listen:   "localhost:8080",
		Debounce: Duration{DefaultDebounce},
		Watch:    true,
	}
}

// IndexURL returns the configured payload location, defaulting to the
// well-known path under the base URL.
func (c *Config) IndexURL() string {
	if c.IndexLocation != "" {
		return c.IndexLocation
	}
	return c.BaseURL + "/search-index.json"
}

// LoadConfig reads the config file, applying defaults for anything unset.
// A missing file yields the default config.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	defaults := GetDefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.PostsDir == "" {
		config.PostsDir = defaults.PostsDir
	}
	if config.Listen == "" {
		config.Listen = defaults.Listen
	}
	if config.Debounce.Duration == 0 {
		config.Debounce = defaults.Debounce
	}

	return &config, nil
}

// SaveConfig writes the config as TOML.
func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample config.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// GetConfigDir returns the configuration directory for bsearch.
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	bsearchConfigDir := filepath.Join(configDir, "bsearch")

	if err := os.MkdirAll(bsearchConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", bsearchConfigDir, err)
	}

	return bsearchConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
