package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/bft-labs/pencen/internal/app"
	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/internal/receipt"
	"github.com/bft-labs/pencen/pkg/log"
)

// DefaultAgentID is the terminal identity used when none is configured.
const DefaultAgentID = "POS-MY-9921"

// Config holds CLI configuration for the pencen terminal.
type Config struct {
	AgentID          string
	DefaultCondition string

	BeneficiaryName     string
	BeneficiaryID       string
	BeneficiaryCategory string

	AmountMinor int64
	Currency    string
	Locale      string

	LoginDelay   time.Duration
	ScanDuration time.Duration
	GPSSearch    time.Duration
	GPSTriangle  time.Duration
	GPSGeofence  time.Duration
	CaptureTick  time.Duration
	CaptureStep  int
	ConfirmDelay time.Duration

	// TimeScale multiplies every simulated delay; 0.1 runs ten times faster.
	TimeScale float64

	WatchConfig bool
	MetricsDump bool
	Demo        bool
	LogLevel    string
	LogFormat   string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	t := app.DefaultTiming()
	return Config{
		AgentID:             DefaultAgentID,
		DefaultCondition:    domain.ConditionBedridden.String(),
		BeneficiaryName:     "Haji Abu Bakar",
		BeneficiaryID:       "800101-14-1234",
		BeneficiaryCategory: "Army Vet",
		AmountMinor:         receipt.DefaultAmount.MinorUnits,
		Currency:            receipt.DefaultAmount.Currency,
		Locale:              "en-MY",
		LoginDelay:          t.LoginDelay,
		ScanDuration:        t.ScanDuration,
		GPSSearch:           t.LocationPhaseDelays[0],
		GPSTriangle:         t.LocationPhaseDelays[1],
		GPSGeofence:         t.LocationPhaseDelays[2],
		CaptureTick:         t.CaptureTick,
		CaptureStep:         t.CaptureStep,
		ConfirmDelay:        t.ConfirmDelay,
		TimeScale:           1,
		WatchConfig:         true,
		LogLevel:            "info",
		LogFormat:           log.FormatConsole,
	}
}

// Validate checks the configuration for errors and normalizes free text.
func (c *Config) Validate() error {
	c.AgentID = strings.TrimSpace(c.AgentID)
	if c.AgentID == "" {
		return fmt.Errorf("agent-id is required")
	}
	if _, err := domain.ParseConditionStatus(c.DefaultCondition); err != nil {
		return fmt.Errorf("condition: %w", err)
	}
	if strings.TrimSpace(c.BeneficiaryName) == "" || strings.TrimSpace(c.BeneficiaryID) == "" {
		return fmt.Errorf("beneficiary name and id are required")
	}

	if c.AmountMinor <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("currency %q: %w", c.Currency, err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", c.Locale, err)
	}

	if c.TimeScale <= 0 {
		return fmt.Errorf("time scale must be positive")
	}
	if err := c.Timing().Validate(); err != nil {
		return err
	}

	if _, err := log.NewZerolog(log.Options{Level: c.LogLevel, Format: c.LogFormat}); err != nil {
		return err
	}
	return nil
}

// Timing returns the simulated latencies.
func (c Config) Timing() app.Timing {
	return app.Timing{
		LoginDelay:   c.LoginDelay,
		ScanDuration: c.ScanDuration,
		LocationPhaseDelays: [domain.LocationPhaseCount]time.Duration{
			c.GPSSearch,
			c.GPSTriangle,
			c.GPSGeofence,
		},
		CaptureTick:  c.CaptureTick,
		CaptureStep:  c.CaptureStep,
		ConfirmDelay: c.ConfirmDelay,
	}
}

// SetTiming copies t into the per-latency fields.
func (c *Config) SetTiming(t app.Timing) {
	c.LoginDelay = t.LoginDelay
	c.ScanDuration = t.ScanDuration
	c.GPSSearch = t.LocationPhaseDelays[0]
	c.GPSTriangle = t.LocationPhaseDelays[1]
	c.GPSGeofence = t.LocationPhaseDelays[2]
	c.CaptureTick = t.CaptureTick
	c.CaptureStep = t.CaptureStep
	c.ConfirmDelay = t.ConfirmDelay
}

// Beneficiary returns the record the simulated card read yields.
func (c Config) Beneficiary() domain.BeneficiaryRecord {
	return domain.BeneficiaryRecord{
		Name:     strings.TrimSpace(c.BeneficiaryName),
		IDNumber: strings.TrimSpace(c.BeneficiaryID),
		Category: strings.TrimSpace(c.BeneficiaryCategory),
	}
}

// Amount returns the disbursed amount. Call after Validate.
func (c Config) Amount() domain.Money {
	return domain.Money{MinorUnits: c.AmountMinor, Currency: strings.ToUpper(c.Currency)}
}

// Language returns the display locale, falling back to English.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Condition returns the preselected beneficiary condition. Call after Validate.
func (c Config) Condition() domain.ConditionStatus {
	cond, _ := domain.ParseConditionStatus(c.DefaultCondition)
	return cond
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
// "0s" is a valid setting.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setPtr copies an already-typed optional value, as decoded from the
// environment, unless the flag was set.
func setPtr[T any](s *configSetter, flag string, value *T, dst *T) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
