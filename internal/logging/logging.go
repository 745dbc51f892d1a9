// Package logging is the out-of-band diagnostic channel. While the dashboard
// runs it owns the terminal, so the logger writes to a rotating file only and
// discards everything until Setup points it somewhere.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = newQuietLogger()

func newQuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})
	return logger
}

// Config controls the rotating diagnostic file.
type Config struct {
	// File is the log file path. Empty leaves the current sink unchanged,
	// which before any Setup means everything is discarded.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Level is one of logrus's level names; unparseable values mean info.
	Level string
}

// Setup routes the package logger into the rotating file. Call it before the
// dashboard takes the terminal; the logger never writes to stdout or stderr.
func Setup(cfg Config) error {
	if cfg.File == "" {
		return nil
	}
	if dir := filepath.Dir(cfg.File); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	return nil
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }

// WithField returns an entry carrying one structured field.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}
