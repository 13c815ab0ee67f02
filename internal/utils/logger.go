package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. Before InitLogger runs it writes to stderr.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

const (
	mainLogName  = "legiscrape.log"
	errorLogName = "legiscrape_error.log"
)

// LogConfig controls level and file rotation.
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	LogDir     string
	MaxSize    int // MB per file
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Console    io.Writer // nil means stdout
}

func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", LogDir: "logs", MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
}

func (c LogConfig) rotated(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(c.LogDir, name),
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// InitLogger sends every event to the console and legiscrape.log, and error events
// also to legiscrape_error.log.
func InitLogger(config LogConfig) error {
	if err := os.MkdirAll(config.LogDir, 0o755); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := config.Console
	if console == nil {
		console = os.Stdout
	}

	Logger = zerolog.New(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
		config.rotated(mainLogName),
		errorsOnly{config.rotated(errorLogName)},
	)).With().Timestamp().Logger()
	log.Logger = Logger

	Logger.Debug().Str("level", level.String()).Str("log_dir", config.LogDir).Msg("logger ready")
	return nil
}

// errorsOnly drops events below error level and level-less writes.
type errorsOnly struct{ w io.Writer }

func (e errorsOnly) Write(p []byte) (int, error) { return len(p), nil }

func (e errorsOnly) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return e.w.Write(p)
}

// ForUnit tags events with the jurisdiction code or bill key being worked on.
func ForUnit(unit string) zerolog.Logger {
	return Logger.With().Str("unit", unit).Logger()
}

func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

func Error(err error, msg string) {
	Logger.Error().Err(err).Msg(msg)
}

func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

// Fatal logs and exits the process.
func Fatal(err error, msg string) {
	Logger.Fatal().Err(err).Msg(msg)
}
