package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the API logger. Production writes JSON lines at info level;
// anything else gets a console writer at debug level.
func New(environment string) zerolog.Logger {
	return newLogger(environment, os.Stdout)
}

func newLogger(environment string, out io.Writer) zerolog.Logger {
	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	} else {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("env", environment).
		Str("service", "blog-api").
		Logger()
}
