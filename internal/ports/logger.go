package ports

import "github.com/bft-labs/pencen/pkg/log"

// Logger is the structured logging abstraction used by the core.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so the core imports a single package.
var (
	String   = log.String
	Stringer = log.Stringer
	Int      = log.Int
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
