package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dagaz/internal/sync"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Sync modes.
const (
	SyncModeOff = "off"
	SyncModeGit = "git"
	SyncModeGCS = "gcs"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Board    BoardConfig       `yaml:"board"`
	Registry RegistryConfig    `yaml:"registry"`
	Sync     SyncConfig        `yaml:"sync"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Board.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// BoardConfig holds the path to the board directory.
type BoardConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the board configuration.
func (c *BoardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RegistryConfig holds the recent-boards catalog database path.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the registry configuration.
func (c *RegistryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SyncConfig selects and configures the sync provider.
//
// Mode controls which provider is wired:
//   - "off" (default): no synchronization.
//   - "git": push and pull through a version-control remote.
//   - "gcs": mirror the board into a cloud storage bucket.
type SyncConfig struct {
	Mode            string `yaml:"mode"`
	Remote          string `yaml:"remote"`
	Branch          string `yaml:"branch"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = SyncModeOff
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(SyncModeOff, SyncModeGit, SyncModeGCS)),
	); err != nil {
		return err
	}
	if c.Mode == SyncModeGCS && c.Bucket == "" {
		return fmt.Errorf("sync: mode is %q but bucket is empty", SyncModeGCS)
	}
	return nil
}

// Enabled returns true when a sync provider should be wired.
func (c *SyncConfig) Enabled() bool {
	return c.Mode != "" && c.Mode != SyncModeOff
}

// Kind returns the provider kind for the configured mode.
func (c *SyncConfig) Kind() sync.Kind {
	return sync.Kind(c.Mode)
}

// Options returns the provider construction options.
func (c *SyncConfig) Options() sync.Options {
	return sync.Options{
		Remote:          c.Remote,
		Branch:          c.Branch,
		Bucket:          c.Bucket,
		Prefix:          c.Prefix,
		CredentialsFile: c.CredentialsFile,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Board: BoardConfig{
			Path: "./board",
		},
		Registry: RegistryConfig{
			Path: "./dagaz.db",
		},
		Sync: SyncConfig{
			Mode:   SyncModeOff,
			Remote: "origin",
			Branch: "main",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
