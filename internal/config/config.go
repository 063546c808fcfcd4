package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"usersearch/internal/eventbus"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint
	DefaultBaseURL = "https://api.github.com/"
	DefaultTimeout = 10 * time.Second

	EnvToken  = "GITHUB_TOKEN"
	EnvAPIURL = "USERSEARCH_API_URL"
)

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	LogFile string         `toml:"log_file"`
	API     APISettings    `toml:"api"`
	Search  SearchSettings `toml:"search"`
	UI      UISettings     `toml:"ui"`
}

// APISettings configures the user directory client
type APISettings struct {
	BaseURL string   `toml:"base_url"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout"`
}

// SearchSettings configures the search controller
type SearchSettings struct {
	ClearQueryOnFound bool `toml:"clear_query_on_found"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowAvatar  bool `toml:"show_avatar"`
	AvatarWidth int  `toml:"avatar_width"`
}

// Duration is a time.Duration stored as a string such as "10s"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigServiceAt creates a config service bound to path
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	return &configService{filePath: path, bus: bus}
}

// DefaultPath returns $XDG_CONFIG_HOME/usersearch/config.toml or the
// closest equivalent on this platform
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "usersearch", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file. A missing file yields defaults.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Fields missing
// from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// the file may hold a token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.Timeout.Duration < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.UI.AvatarWidth < 0 {
		return errors.New("ui.avatar_width must not be negative")
	}
	return nil
}

// ApplyEnv overrides settings from the environment. The token is normally
// supplied this way rather than written to the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.API.Token = v
	}
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		LogFile: "usersearch.log",
		API: APISettings{
			BaseURL: DefaultBaseURL,
			Timeout: Duration{DefaultTimeout},
		},
		Search: SearchSettings{
			ClearQueryOnFound: true,
		},
		UI: UISettings{
			ShowAvatar:  true,
			AvatarWidth: 20,
		},
	}
}
