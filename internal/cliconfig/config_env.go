package cliconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig is the PENCEN_* environment surface. Unset variables decode to
// nil (or "") and leave the current value alone.
type EnvConfig struct {
	AgentID             string         `env:"PENCEN_AGENT_ID"`
	DefaultCondition    string         `env:"PENCEN_DEFAULT_CONDITION"`
	BeneficiaryName     string         `env:"PENCEN_BENEFICIARY_NAME"`
	BeneficiaryID       string         `env:"PENCEN_BENEFICIARY_ID"`
	BeneficiaryCategory string         `env:"PENCEN_BENEFICIARY_CATEGORY"`
	AmountMinor         *int64         `env:"PENCEN_AMOUNT_MINOR"`
	Currency            string         `env:"PENCEN_CURRENCY"`
	Locale              string         `env:"PENCEN_LOCALE"`
	LoginDelay          *time.Duration `env:"PENCEN_LOGIN_DELAY"`
	ScanDuration        *time.Duration `env:"PENCEN_SCAN_DURATION"`
	GPSSearch           *time.Duration `env:"PENCEN_GPS_SEARCH"`
	GPSTriangulate      *time.Duration `env:"PENCEN_GPS_TRIANGULATE"`
	GPSGeofence         *time.Duration `env:"PENCEN_GPS_GEOFENCE"`
	CaptureTick         *time.Duration `env:"PENCEN_CAPTURE_TICK"`
	CaptureStep         *int           `env:"PENCEN_CAPTURE_STEP"`
	ConfirmDelay        *time.Duration `env:"PENCEN_CONFIRM_DELAY"`
	TimeScale           *float64       `env:"PENCEN_TIME_SCALE"`
	WatchConfig         *bool          `env:"PENCEN_WATCH_CONFIG"`
	MetricsDump         *bool          `env:"PENCEN_METRICS_DUMP"`
	LogLevel            string         `env:"PENCEN_LOG_LEVEL"`
	LogFormat           string         `env:"PENCEN_LOG_FORMAT"`
}

// LoadEnvConfig decodes the PENCEN_* variables.
func LoadEnvConfig() (EnvConfig, error) {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return ec, fmt.Errorf("parse env: %w", err)
	}
	return ec, nil
}

// ApplyEnvConfig applies configuration from environment variables (PENCEN_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	ec, err := LoadEnvConfig()
	if err != nil {
		return err
	}
	applyEnv(cfg, ec, changed)
	return nil
}

func applyEnv(cfg *Config, ec EnvConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("agent-id", ec.AgentID, &cfg.AgentID)
	s.setString("condition", ec.DefaultCondition, &cfg.DefaultCondition)
	s.setString("beneficiary-name", ec.BeneficiaryName, &cfg.BeneficiaryName)
	s.setString("beneficiary-id", ec.BeneficiaryID, &cfg.BeneficiaryID)
	s.setString("beneficiary-category", ec.BeneficiaryCategory, &cfg.BeneficiaryCategory)
	setPtr(s, "amount", ec.AmountMinor, &cfg.AmountMinor)
	s.setString("currency", ec.Currency, &cfg.Currency)
	s.setString("locale", ec.Locale, &cfg.Locale)

	setPtr(s, "login-delay", ec.LoginDelay, &cfg.LoginDelay)
	setPtr(s, "scan-duration", ec.ScanDuration, &cfg.ScanDuration)
	setPtr(s, "gps-search", ec.GPSSearch, &cfg.GPSSearch)
	setPtr(s, "gps-triangulate", ec.GPSTriangulate, &cfg.GPSTriangle)
	setPtr(s, "gps-geofence", ec.GPSGeofence, &cfg.GPSGeofence)
	setPtr(s, "capture-tick", ec.CaptureTick, &cfg.CaptureTick)
	setPtr(s, "capture-step", ec.CaptureStep, &cfg.CaptureStep)
	setPtr(s, "confirm-delay", ec.ConfirmDelay, &cfg.ConfirmDelay)
	setPtr(s, "time-scale", ec.TimeScale, &cfg.TimeScale)

	setPtr(s, "watch-config", ec.WatchConfig, &cfg.WatchConfig)
	setPtr(s, "metrics-dump", ec.MetricsDump, &cfg.MetricsDump)
	s.setString("log-level", ec.LogLevel, &cfg.LogLevel)
	s.setString("log-format", ec.LogFormat, &cfg.LogFormat)
}
