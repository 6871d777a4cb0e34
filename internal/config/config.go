package config

import (
	"fmt"
	"strings"

	"github.com/compozy/prflow/internal/domain"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultPath is where the configuration file is looked up when no --config flag is given.
const DefaultPath = "config.json"

type Config struct {
	GithubToken string `mapstructure:"githubToken"`
	APIBaseURL  string `mapstructure:"apiBaseUrl"`
	StateDir    string `mapstructure:"stateDir"`
	Affiliation string `mapstructure:"affiliation"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		StateDir:    ".prflow-state",
		Affiliation: "owner",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GithubToken) == "" {
		return fmt.Errorf("githubToken is missing")
	}
	if c.StateDir == "" {
		return fmt.Errorf("stateDir cannot be empty")
	}
	// Check for path traversal in state directory
	if strings.Contains(c.StateDir, "..") {
		return fmt.Errorf("stateDir contains invalid path traversal")
	}
	return nil
}

// Load reads the JSON configuration file at path from fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check configuration file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w at %s", domain.ErrConfigNotFound, path)
	}
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	// Only the optional settings can come from the environment; the token is file-only
	if err := v.BindEnv("apiBaseUrl", "PRFLOW_API_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind apiBaseUrl env: %w", err)
	}
	if err := v.BindEnv("stateDir", "PRFLOW_STATE_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind stateDir env: %w", err)
	}
	if err := v.BindEnv("affiliation", "PRFLOW_AFFILIATION"); err != nil {
		return nil, fmt.Errorf("failed to bind affiliation env: %w", err)
	}
	defaults := DefaultConfig()
	v.SetDefault("stateDir", defaults.StateDir)
	v.SetDefault("affiliation", defaults.Affiliation)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigMalformed, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigMalformed, err)
	}
	cfg.GithubToken = strings.TrimSpace(cfg.GithubToken)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigMalformed, err)
	}
	return &cfg, nil
}
