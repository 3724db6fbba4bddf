package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/pencen/pkg/log"
)

// Logger returns the CLI's zerolog logger for the configured level and
// format. Call after Validate; an invalid setting falls back to console/info.
func Logger(cfg Config) zerolog.Logger {
	l, err := log.NewZerolog(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: os.Stderr})
	if err != nil {
		l, _ = log.NewZerolog(log.Options{Out: os.Stderr})
	}
	return l
}
