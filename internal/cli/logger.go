package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sadopc/focusflow/internal/config"
)

const (
	logsDir       = "logs"
	logFileName   = "focusflow.log"
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// InitLogger builds the process logger. With fileOnly set (the TUI owns the
// terminal) entries go to the rotating log file alone; otherwise they also
// go to stderr. The returned closer releases the log file and is never nil.
func InitLogger(level zerolog.Level, fileOnly bool) (zerolog.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	file, err := createLogFileWriter()
	if err == nil {
		writers = append(writers, file)
		closer = file
	}
	if !fileOnly {
		writers = append(writers, selectOutput())
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 1:
		w = writers[0]
	case 2:
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("log file disabled")
	}
	return logger, closer
}

// InitLoggerWithWriter creates a logger writing JSON to w. Used by tests.
func InitLoggerWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LogFilePath is where the rotating log file lives.
func LogFilePath() (string, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logsDir, logFileName), nil
}

// selectLevel picks the level from the flags, falling back to the
// configured log.level.
func selectLevel(verbose, quiet bool, configured string) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	}
	if l, err := zerolog.ParseLevel(configured); err == nil && configured != "" {
		return l
	}
	return zerolog.InfoLevel
}

// selectOutput determines the appropriate output writer based on
// terminal capabilities and environment settings.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

func createLogFileWriter() (io.WriteCloser, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
