package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigDir overrides the configuration directory
const EnvConfigDir = "SUBS_CONFIG_DIR"

// Default layout sizes, also used for layout values left at zero
const (
	DefaultSourceWidth   = 32
	DefaultMessageWidth  = 60
	DefaultMessageHeight = 10
)

// Config represents the application configuration
type Config struct {
	Version     int    `toml:"version"`
	Database    string `toml:"database"`
	LogFile     string `toml:"log_file"`
	LogCapacity int    `toml:"log_capacity"`
	Script      string `toml:"script"` // Lua init file, relative to the config directory
	NoColor     bool   `toml:"no_color"`
	Layout      Layout `toml:"layout"`
	Theme       Theme  `toml:"theme"`
}

// Layout is the built-in pane geometry used when the script defines none
type Layout struct {
	SourceWidth   int `toml:"source_width"`
	MessageWidth  int `toml:"message_width"`
	MessageHeight int `toml:"message_height"`
}

// Theme holds lipgloss color strings for each display attribute
type Theme struct {
	Selected string `toml:"selected"`
	Inactive string `toml:"inactive"`
	Error    string `toml:"error"`
	Border   string `toml:"border"`
	Title    string `toml:"title"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// Dir returns the configuration directory
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "subs")
}

// NewConfigService creates a config service reading config.toml from Dir
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(Dir(), "config.toml"),
	}
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when
// the file does not exist
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
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
	if cfg.Script != "" && !filepath.IsAbs(cfg.Script) {
		cfg.Script = filepath.Join(filepath.Dir(path), cfg.Script)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the UI cannot work with
func (c *Config) Validate() error {
	if c.LogCapacity < 0 {
		return fmt.Errorf("log_capacity must not be negative, got %d", c.LogCapacity)
	}
	if c.Layout.SourceWidth != 0 && c.Layout.SourceWidth < 8 {
		return fmt.Errorf("layout.source_width must be at least 8, got %d", c.Layout.SourceWidth)
	}
	if c.Layout.MessageWidth < 0 || c.Layout.MessageHeight < 0 {
		return errors.New("layout.message_width and layout.message_height must not be negative")
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		Database:    defaultDatabase(),
		LogCapacity: 4096,
		Script:      filepath.Join(Dir(), "init.lua"),
		Layout: Layout{
			SourceWidth:   DefaultSourceWidth,
			MessageWidth:  DefaultMessageWidth,
			MessageHeight: DefaultMessageHeight,
		},
		Theme: Theme{
			Selected: "63",
			Inactive: "241",
			Error:    "203", // red
			Border:   "241",
			Title:    "214", // yellow
		},
	}
}

func defaultDatabase() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "subs", "db")
}
