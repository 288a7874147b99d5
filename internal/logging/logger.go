// Package logging builds the process-wide zerolog logger from LOG_LEVEL.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a JSON zerolog logger at the given level string ("debug",
// "info", "warn", "error", ...). An unrecognized level falls back to info.
func New(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
