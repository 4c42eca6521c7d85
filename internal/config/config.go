package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AnalyticsConfig tunes the analytics pipeline. Zero values are replaced by
// defaults on Load.
type AnalyticsConfig struct {
	// BodyweightKg is used for users without a stored bodyweight.
	BodyweightKg     float64 `yaml:"bodyweight_kg"`
	LookbackDays     int     `yaml:"lookback_days"`
	OLSFutureDays    int     `yaml:"ols_future_days"`
	EWMAFutureDays   int     `yaml:"ewma_future_days"`
	DeloadThreshold  float64 `yaml:"deload_threshold"`
	TargetFrequency  int     `yaml:"target_frequency"`
	ForecastStrategy string  `yaml:"forecast_strategy"`
}

// DefaultAnalytics returns the analytics settings used when the file leaves them out.
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		BodyweightKg:     80,
		LookbackDays:     365,
		OLSFutureDays:    30,
		EWMAFutureDays:   45,
		DeloadThreshold:  0.10,
		TargetFrequency:  4,
		ForecastStrategy: "ewma",
	}
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix RAPTORFIT_ and underscore-separated paths:
//
//	RAPTORFIT_SERVER_HOST, RAPTORFIT_SERVER_PORT,
//	RAPTORFIT_DB_HOST, RAPTORFIT_DB_PORT, RAPTORFIT_DB_NAME,
//	RAPTORFIT_DB_USER, RAPTORFIT_DB_PASSWORD, RAPTORFIT_DB_SSLMODE,
//	RAPTORFIT_AUTH_API_KEY,
//	RAPTORFIT_TAILSCALE_ENABLED, RAPTORFIT_TAILSCALE_HOSTNAME, RAPTORFIT_TAILSCALE_STATE_DIR,
//	RAPTORFIT_ANALYTICS_BODYWEIGHT_KG, RAPTORFIT_ANALYTICS_FORECAST_STRATEGY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RAPTORFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RAPTORFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RAPTORFIT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("RAPTORFIT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("RAPTORFIT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("RAPTORFIT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("RAPTORFIT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("RAPTORFIT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("RAPTORFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("RAPTORFIT_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("RAPTORFIT_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("RAPTORFIT_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("RAPTORFIT_ANALYTICS_BODYWEIGHT_KG"); v != "" {
		if bw, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analytics.BodyweightKg = bw
		}
	}
	if v := os.Getenv("RAPTORFIT_ANALYTICS_FORECAST_STRATEGY"); v != "" {
		cfg.Analytics.ForecastStrategy = v
	}
}

func applyDefaults(cfg *Config) {
	def := DefaultAnalytics()
	a := &cfg.Analytics
	if a.BodyweightKg == 0 {
		a.BodyweightKg = def.BodyweightKg
	}
	if a.LookbackDays == 0 {
		a.LookbackDays = def.LookbackDays
	}
	if a.OLSFutureDays == 0 {
		a.OLSFutureDays = def.OLSFutureDays
	}
	if a.EWMAFutureDays == 0 {
		a.EWMAFutureDays = def.EWMAFutureDays
	}
	if a.DeloadThreshold == 0 {
		a.DeloadThreshold = def.DeloadThreshold
	}
	if a.TargetFrequency == 0 {
		a.TargetFrequency = def.TargetFrequency
	}
	if a.ForecastStrategy == "" {
		a.ForecastStrategy = def.ForecastStrategy
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "raptorfit"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return c.Analytics.validate()
}

func (a AnalyticsConfig) validate() error {
	if a.BodyweightKg < 0 {
		return fmt.Errorf("analytics.bodyweight_kg must be positive")
	}
	if a.LookbackDays < 0 {
		return fmt.Errorf("analytics.lookback_days must be positive")
	}
	if a.DeloadThreshold < 0 || a.DeloadThreshold >= 1 {
		return fmt.Errorf("analytics.deload_threshold must be between 0 and 1, got %v", a.DeloadThreshold)
	}
	if a.TargetFrequency < 0 || a.TargetFrequency > 14 {
		return fmt.Errorf("analytics.target_frequency must be between 1 and 14, got %d", a.TargetFrequency)
	}
	switch a.ForecastStrategy {
	case "ols", "ewma":
	default:
		return fmt.Errorf("analytics.forecast_strategy must be \"ols\" or \"ewma\", got %q", a.ForecastStrategy)
	}
	return nil
}
