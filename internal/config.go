package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeOAuth    = "oauth"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	Users     UsersConfig       `yaml:"users"`
	Build     BuildConfig       `yaml:"build"`
	Auth      AuthConfig        `yaml:"auth"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Users.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
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

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the markdown content root.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// UsersConfig holds the path to the flat user file.
type UsersConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the users configuration.
func (c *UsersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// BuildConfig holds the external static-site generation command.
type BuildConfig struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	Dir            string   `yaml:"dir"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	MaxOutputKB    int      `yaml:"max_output_kb"`
}

// Timeout returns the build wall-clock limit.
func (c *BuildConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxOutputBytes returns the captured-output cap in bytes.
func (c *BuildConfig) MaxOutputBytes() int64 {
	return int64(c.MaxOutputKB) * 1024
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
		validation.Field(&c.MaxOutputKB, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the admin surface is guarded:
//   - "disabled" (default): no authentication, suitable for local dev.
//   - "oauth": OAuth login with cookie sessions; the Google client and the
//     session secret must be configured.
type AuthConfig struct {
	Mode          string       `yaml:"mode"`
	SessionSecret string       `yaml:"session_secret"`
	SessionName   string       `yaml:"session_name"`
	SessionMaxAge int          `yaml:"session_max_age"`
	Google        GoogleConfig `yaml:"google"`
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if c.SessionName == "" {
		c.SessionName = "skald_session"
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeOAuth)),
		validation.Field(&c.SessionMaxAge, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeOAuth {
		if c.SessionSecret == "" {
			return fmt.Errorf("auth: mode is %q but session_secret is empty", AuthModeOAuth)
		}
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.RedirectURL == "" {
			return fmt.Errorf("auth: mode is %q but the google client is not fully configured", AuthModeOAuth)
		}
	}
	return nil
}

// AuthEnabled returns true when the session gate is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeOAuth
}

// RateLimitConfig holds the per-address request ceiling.
// Requests = 0 disables rate limiting.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Enabled reports whether the limiter should be installed.
func (c *RateLimitConfig) Enabled() bool {
	return c.Requests > 0
}

// Window returns the limiter window duration.
func (c *RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// WatchConfig controls the content-directory watcher.
type WatchConfig struct {
	Enabled         bool `yaml:"enabled"`
	DebounceSeconds int  `yaml:"debounce_seconds"`
}

// Debounce returns the watcher debounce interval.
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceSeconds) * time.Second
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
		Content: ContentConfig{
			Dir: "./content/posts",
		},
		Users: UsersConfig{
			Path: "./data/users.json",
		},
		Build: BuildConfig{
			Command:        "hugo",
			Args:           []string{"--minify"},
			Dir:            ".",
			TimeoutSeconds: 30,
			MaxOutputKB:    1024,
		},
		Auth: AuthConfig{
			Mode:          AuthModeDisabled,
			SessionName:   "skald_session",
			SessionMaxAge: 7 * 24 * 3600,
		},
		RateLimit: RateLimitConfig{
			Requests:      120,
			WindowSeconds: 60,
		},
		Watch: WatchConfig{
			Enabled:         true,
			DebounceSeconds: 2,
		},
	}
}
