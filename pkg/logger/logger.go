// pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// stdout carries prediction output, so diagnostics always go to stderr
	Log = New(os.Stderr, true)
	log.Logger = Log
}

// New builds a logger writing to w. Console output is colored and human readable,
// otherwise one JSON object per line.
func New(w io.Writer, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	return zerolog.New(w).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Configure replaces the global logger. format is "console" or "json".
func Configure(format, levelStr string) {
	Log = New(os.Stderr, format != "json")
	SetLevel(levelStr)
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}
