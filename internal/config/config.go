// Package config builds the tool's configuration once at startup. Components
// never read environment state themselves; every path and endpoint they need
// arrives through the Config struct constructed here.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// CLAUDE_PROFILES_PROFILES_ROOT or CLAUDE_PROFILES_LOGGING_LEVEL.
const envPrefix = "CLAUDE_PROFILES"

// Config holds all configuration for the tool.
type Config struct {
	// HomeDir is the user home directory the host application runs under.
	HomeDir string `mapstructure:"home_dir"`

	// ProfilesRoot is where profile snapshots, sandboxes, and the active
	// marker live.
	ProfilesRoot string `mapstructure:"profiles_root"`

	// LiveCredentialsPath is the host application's live credential file,
	// shared by every non-isolated session.
	LiveCredentialsPath string `mapstructure:"live_credentials_path"`

	// SettingsPath is the host's optional settings file, copied into launch
	// sandboxes when present.
	SettingsPath string `mapstructure:"settings_path"`

	// HostCommand is the binary spawned by the launch command.
	HostCommand string `mapstructure:"host_command"`

	OAuth   OAuthConfig   `mapstructure:"oauth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OAuthConfig configures the pass-through token refresh.
type OAuthConfig struct {
	ClientID string `mapstructure:"client_id"`
	TokenURL string `mapstructure:"token_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
}

// Load builds the configuration from defaults and environment variables.
// The home directory is the only ambient lookup; everything else derives
// from it unless overridden.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home := v.GetString("home_dir")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
	}

	v.SetDefault("home_dir", home)
	v.SetDefault("profiles_root", filepath.Join(home, ".claude-profiles"))
	v.SetDefault("live_credentials_path", filepath.Join(home, ".claude", ".credentials.json"))
	v.SetDefault("settings_path", filepath.Join(home, ".claude", "settings.json"))
	v.SetDefault("host_command", "claude")
	v.SetDefault("oauth.client_id", "9d1c250a-e61b-44d9-88ed-5944d1962f5e")
	v.SetDefault("oauth.token_url", "https://console.anthropic.com/v1/oauth/token")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if c.HomeDir == "" {
		return fmt.Errorf("home_dir cannot be empty")
	}
	if c.ProfilesRoot == "" {
		return fmt.Errorf("profiles_root cannot be empty")
	}
	if c.LiveCredentialsPath == "" {
		return fmt.Errorf("live_credentials_path cannot be empty")
	}
	if c.HostCommand == "" {
		return fmt.Errorf("host_command cannot be empty")
	}

	u, err := url.Parse(c.OAuth.TokenURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("oauth.token_url must be an absolute URL, got %q", c.OAuth.TokenURL)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}
