// Package config loads application settings from configs/config.yml, an
// optional .env file and ENVMON_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"workshop_monitor/internal/models"
	"workshop_monitor/internal/threshold"
	"workshop_monitor/internal/view"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Deployment profiles. They differ only in the default history limit.
const (
	ProfileDefault  = "default"
	ProfileExtended = "extended"
)

var profileHistoryLimit = map[string]int{
	ProfileDefault:  25,
	ProfileExtended: 100,
}

const envPrefix = "ENVMON"

// Config is the full application configuration.
type Config struct {
	Profile   string          `mapstructure:"profile"`
	Port      string          `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	Device    DeviceConfig    `mapstructure:"device"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// DeviceConfig locates the telemetry backend.
type DeviceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollingConfig sets the engine cadence.
type PollingConfig struct {
	StatusInterval time.Duration `mapstructure:"status_interval"`
	HistoryLimit   int           `mapstructure:"history_limit"`
}

// DashboardConfig tunes the projected views.
type DashboardConfig struct {
	LatestSource   string                `mapstructure:"latest_source"`
	MaxChartPoints int                   `mapstructure:"max_chart_points"`
	Timezone       string                `mapstructure:"timezone"`
	Thresholds     map[string]BandConfig `mapstructure:"thresholds"`
}

// BandConfig overrides the bounds of one metric.
type BandConfig struct {
	Lower float64 `mapstructure:"lower"`
	Upper float64 `mapstructure:"upper"`
}

// CORSConfig lists origins allowed to call the dashboard API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SimulatorConfig drives cmd/devicesim.
type SimulatorConfig struct {
	Port         string        `mapstructure:"port"`
	DBPath       string        `mapstructure:"db_path"`
	Tick         time.Duration `mapstructure:"tick"`
	HistoryEvery int           `mapstructure:"history_every"`
	Seed         int64         `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", ProfileDefault)
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("device.base_url", "http://127.0.0.1:8000")
	v.SetDefault("device.timeout", "0s")
	v.SetDefault("polling.status_interval", "3s")
	v.SetDefault("polling.history_limit", 0)
	v.SetDefault("dashboard.latest_source", "status")
	v.SetDefault("dashboard.max_chart_points", 30)
	v.SetDefault("dashboard.timezone", "Local")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("simulator.port", "8000")
	v.SetDefault("simulator.db_path", "device.db")
	v.SetDefault("simulator.tick", "1s")
	v.SetDefault("simulator.history_every", 5)
	v.SetDefault("simulator.seed", 0)
}

// Load reads configuration. An empty path searches ./configs and . for
// config.yml; a missing file falls back to defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyProfile()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyProfile() {
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	if c.Polling.HistoryLimit == 0 {
		c.Polling.HistoryLimit = profileHistoryLimit[c.Profile]
	}
	c.Dashboard.LatestSource = strings.ToLower(strings.TrimSpace(c.Dashboard.LatestSource))
}

// Validate checks values the engine and projector cannot recover from.
func (c *Config) Validate() error {
	if _, ok := profileHistoryLimit[c.Profile]; !ok {
		return fmt.Errorf("unknown profile %q (want %q or %q)", c.Profile, ProfileDefault, ProfileExtended)
	}
	if c.Polling.StatusInterval <= 0 {
		return fmt.Errorf("polling.status_interval must be > 0, got %v", c.Polling.StatusInterval)
	}
	if c.Polling.HistoryLimit <= 0 {
		return fmt.Errorf("polling.history_limit must be > 0, got %d", c.Polling.HistoryLimit)
	}
	switch c.Dashboard.LatestSource {
	case "status", "history":
	default:
		return fmt.Errorf("dashboard.latest_source must be status or history, got %q", c.Dashboard.LatestSource)
	}
	if c.Dashboard.MaxChartPoints < 1 {
		return fmt.Errorf("dashboard.max_chart_points must be >= 1, got %d", c.Dashboard.MaxChartPoints)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Bands(); err != nil {
		return err
	}
	if c.Device.BaseURL == "" {
		return errors.New("device.base_url is required")
	}
	return nil
}

// Location resolves dashboard.timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return loc, nil
}

// Bands converts threshold overrides into classifier bands. The band kind of
// each metric is kept from the defaults.
func (c *Config) Bands() (map[models.Metric]threshold.Band, error) {
	out := make(map[models.Metric]threshold.Band, len(c.Dashboard.Thresholds))
	for name, bc := range c.Dashboard.Thresholds {
		m := models.Metric(strings.ToLower(name))
		def, ok := threshold.DefaultBands[m]
		if !ok {
			return nil, fmt.Errorf("dashboard.thresholds: unknown metric %q", name)
		}
		if bc.Lower > bc.Upper {
			return nil, fmt.Errorf("dashboard.thresholds.%s: lower %g > upper %g", name, bc.Lower, bc.Upper)
		}
		out[m] = threshold.Band{Kind: def.Kind, Lower: bc.Lower, Upper: bc.Upper}
	}
	return out, nil
}

// ProjectorOptions resolves the dashboard settings into view options.
func (c *Config) ProjectorOptions() (view.Options, error) {
	bands, err := c.Bands()
	if err != nil {
		return view.Options{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return view.Options{}, err
	}
	return view.Options{
		LatestSource:   view.LatestSource(c.Dashboard.LatestSource),
		MaxChartPoints: c.Dashboard.MaxChartPoints,
		Classifier:     threshold.NewClassifier(bands),
		Location:       loc,
	}, nil
}
