package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/pencen/internal/app"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	AgentID          string                `toml:"agent_id"`
	DefaultCondition string                `toml:"default_condition"`
	Beneficiary      BeneficiaryFileConfig `toml:"beneficiary"`
	AmountMinor      int64                 `toml:"amount_minor"`
	Currency         string                `toml:"currency"`
	Locale           string                `toml:"locale"`
	TimeScale        float64               `toml:"time_scale"`
	WatchConfig      *bool                 `toml:"watch_config"`
	LogLevel         string                `toml:"log_level"`
	LogFormat        string                `toml:"log_format"`
	Timing           TimingFileConfig      `toml:"timing"`
}

// BeneficiaryFileConfig is the [beneficiary] table.
type BeneficiaryFileConfig struct {
	Name     string `toml:"name"`
	IDNumber string `toml:"id_number"`
	Category string `toml:"category"`
}

// TimingFileConfig is the [timing] table. It is the only part of the file
// that is re-read while the terminal runs.
type TimingFileConfig struct {
	LoginDelay     string `toml:"login_delay"`
	ScanDuration   string `toml:"scan_duration"`
	GPSSearch      string `toml:"gps_search"`
	GPSTriangulate string `toml:"gps_triangulate"`
	GPSGeofence    string `toml:"gps_geofence"`
	CaptureTick    string `toml:"capture_tick"`
	CaptureStep    int    `toml:"capture_step"`
	ConfirmDelay   string `toml:"confirm_delay"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.pencen/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pencen", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("agent-id", fc.AgentID, &cfg.AgentID)
	s.setString("condition", fc.DefaultCondition, &cfg.DefaultCondition)
	s.setString("beneficiary-name", fc.Beneficiary.Name, &cfg.BeneficiaryName)
	s.setString("beneficiary-id", fc.Beneficiary.IDNumber, &cfg.BeneficiaryID)
	s.setString("beneficiary-category", fc.Beneficiary.Category, &cfg.BeneficiaryCategory)
	s.setInt64("amount", fc.AmountMinor, &cfg.AmountMinor)
	s.setString("currency", fc.Currency, &cfg.Currency)
	s.setString("locale", fc.Locale, &cfg.Locale)
	s.setFloat("time-scale", fc.TimeScale, &cfg.TimeScale)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	return applyTiming(s, fc.Timing, cfg)
}

func applyTiming(s *configSetter, t TimingFileConfig, cfg *Config) error {
	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"login-delay", t.LoginDelay, &cfg.LoginDelay},
		{"scan-duration", t.ScanDuration, &cfg.ScanDuration},
		{"gps-search", t.GPSSearch, &cfg.GPSSearch},
		{"gps-triangulate", t.GPSTriangulate, &cfg.GPSTriangle},
		{"gps-geofence", t.GPSGeofence, &cfg.GPSGeofence},
		{"capture-tick", t.CaptureTick, &cfg.CaptureTick},
		{"confirm-delay", t.ConfirmDelay, &cfg.ConfirmDelay},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}
	s.setInt("capture-step", t.CaptureStep, &cfg.CaptureStep)
	return nil
}

// ReloadTiming re-reads the [timing] table of path on top of cfg. Flags that
// were set on the command line keep their values.
func ReloadTiming(path string, cfg Config, changed map[string]bool) (app.Timing, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return app.Timing{}, fmt.Errorf("load config: %w", err)
	}
	if err := applyTiming(newConfigSetter(changed), fc.Timing, &cfg); err != nil {
		return app.Timing{}, err
	}
	t := cfg.Timing()
	if err := t.Validate(); err != nil {
		return app.Timing{}, err
	}
	return t, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
