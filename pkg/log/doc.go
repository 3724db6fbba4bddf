// Package log provides a logging abstraction for pencen components.
//
// The workflow controller and the terminal only ever see the [Logger]
// interface. A zerolog adapter is provided for real output and a no-op
// logger for tests and embedders that do not want log lines.
//
// # Usage
//
// Build a zerolog-backed logger from options:
//
//	logger, err := log.New(log.Options{Level: "debug", Format: log.FormatJSON})
//	if err != nil {
//	    return err
//	}
//
// Or wrap an existing zerolog.Logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
package log
