package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	EMPTY   = ""
	DEBUG   = "debug"
	INFO    = "info"
	WARN    = "warn"
	ERROR   = "error"
	JSON    = "json"
	CONSOLE = "console"
	SERVICE = "service"
)

// Logger is a key/value structured logger backed by zerolog:
// log.Info("Appointment created", "id", id, "staff_id", staffID)
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Format == EMPTY {
		cfg.Format = JSON
	}

	var out io.Writer = cfg.Output
	if cfg.Format == CONSOLE {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != EMPTY {
		ctx = ctx.Str(SERVICE, cfg.Service)
	}
	if cfg.AddSource {
		// two wrapper frames: the level method and write
		ctx = ctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2)
	}

	return &Logger{zl: ctx.Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	write(l.zl.Debug(), msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	write(l.zl.Info(), msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	write(l.zl.Warn(), msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	write(l.zl.Error(), msg, args)
}

// Fatal logs a critical error and exits the application with status code 1
// Use this for unrecoverable errors that prevent the application from starting or continuing
func (l *Logger) Fatal(msg string, args ...any) {
	write(l.zl.Error(), msg, args)
	os.Exit(1)
}

// With returns a child logger that stamps the given key/value pairs on every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(args).Logger()}
}

// Printf adapts the logger to libraries that expect a printf-style sink.
func (l *Logger) Printf(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Errorf is Printf at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func write(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	if len(args) > 0 {
		e = e.Fields(args)
	}
	e.Msg(msg)
}
