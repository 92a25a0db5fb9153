/*
Package logx wraps zerolog behind a small global logging surface.

It initializes the process-wide logger once at startup and exposes leveled
helpers used across the relay. Development mode uses the human-readable
console writer at debug level; anything else emits JSON at info level.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog instance. Call it once, before any
// other package logs.
func Init(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger. Components that want scoped
// context derive child loggers from it with With().
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Info records a message at Info level with optional key-value fields.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at Warn level with optional key-value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Error records an error and message at Error level with optional key-value fields.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Fatal records the error at Fatal level and terminates the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}
