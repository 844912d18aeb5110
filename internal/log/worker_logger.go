package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewWithLevel builds a logger for the background binaries from a level name.
func NewWithLevel(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", "blog-worker").
		Logger()

	zerolog.SetGlobalLevel(ParseLevel(level))
	return logger
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
