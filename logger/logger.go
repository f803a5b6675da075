package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper over zerolog that carries per-component fields
type Logger struct {
	zl zerolog.Logger
}

// Default is the process wide logger. It is built lazily on first use.
var Default *Logger

// Component names used in the "component" field
const (
	componentWorker    = "worker"
	componentStore     = "store"
	componentPublisher = "publisher"
	componentCache     = "cache"
)

// Init builds Default from LOG_LEVEL, LOG_FILE and CAMPAIGN_ENVIRONMENT.
// Console output always goes to stdout; LOG_FILE additionally receives JSON lines.
func Init() {
	level := getLogLevel()
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	out, fileErr := outputs(os.Getenv("LOG_FILE"))
	Default = New(zerolog.New(out).With().Timestamp().Logger())

	if fileErr != nil {
		Default.Warn().Err(fileErr).Msg("Could not open LOG_FILE, logging to stdout only")
	}
	Default.Debug().Str("level", level.String()).Msg("Logger initialized")
}

func outputs(path string) (io.Writer, error) {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if path == "" {
		return console, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return console, err
	}
	return zerolog.MultiLevelWriter(console, f), nil
}

// getLogLevel reads LOG_LEVEL. Unset means debug outside production, and an
// unparsable value falls back to info.
func getLogLevel() zerolog.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		if os.Getenv("CAMPAIGN_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}
	if level, err := zerolog.ParseLevel(raw); err == nil {
		return level
	}
	return zerolog.InfoLevel
}

// New wraps an existing zerolog logger, mainly for tests that capture output
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) with(key, value string) *Logger {
	return New(l.zl.With().Str(key, value).Logger())
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// ForSource returns a logger tagged with a bank source id
func ForSource(sourceID string) *Logger { return current().with("source", sourceID) }

func ForWorker() *Logger    { return current().with("component", componentWorker) }
func ForStore() *Logger     { return current().with("component", componentStore) }
func ForPublisher() *Logger { return current().with("component", componentPublisher) }
func ForCache() *Logger     { return current().with("component", componentCache) }

// Info and Warn are printf style shortcuts on Default
func Info(format string, v ...interface{}) {
	current().Info().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	current().Warn().Msgf(format, v...)
}

// LogError records err against a component or source id
func LogError(component string, err error, format string, v ...interface{}) {
	current().Error().
		Str("component", component).
		Err(err).
		Msg(fmt.Sprintf(format, v...))
}

func current() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}
