package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/frankmd/internal/search"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	Search SearchConfig      `yaml:"search"`
	Watch  WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig holds the notes root. The directory is created when missing.
type NotesConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SearchConfig holds content search defaults.
type SearchConfig struct {
	ContextLines int `yaml:"context_lines"`
	MaxResults   int `yaml:"max_results"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContextLines, validation.Min(0), validation.Max(20)),
		validation.Field(&c.MaxResults, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

// Options converts the configuration to search options.
func (c *SearchConfig) Options() search.Options {
	return search.Options{ContextLines: c.ContextLines, MaxResults: c.MaxResults}
}

// WatchConfig controls live change notifications.
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TreeThrottle time.Duration `yaml:"tree_throttle"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TreeThrottle, validation.Min(time.Duration(0))),
	)
}

// DefaultNotesPath returns the notes directory next to the running
// executable, or ./notes when the executable cannot be located.
func DefaultNotesPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(".", "notes")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "notes")
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Notes: NotesConfig{
			Path: DefaultNotesPath(),
		},
		Search: SearchConfig{
			ContextLines: search.DefaultContextLines,
			MaxResults:   search.DefaultMaxResults,
		},
		Watch: WatchConfig{
			Enabled:      true,
			TreeThrottle: time.Second,
		},
	}
}
