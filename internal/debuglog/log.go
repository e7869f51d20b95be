package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown input yields INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Options controls the rotating file sink.
type Options struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu           sync.Mutex
	currentLevel = LevelOff
	logger       = newDiscardLogger()
	sink         *lumberjack.Logger
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.popcorn/popcorn.log.
func Setup(level LogLevel, filePath ...string) error {
	opts := Options{}
	if len(filePath) > 0 {
		opts.Path = filePath[0]
	}
	return SetupWithOptions(level, opts)
}

func SetupWithOptions(level LogLevel, opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeSinkLocked()
	currentLevel = level

	if level == LevelOff {
		logger = newDiscardLogger()
		return nil
	}

	logPath := opts.Path
	if logPath == "" {
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".popcorn", "popcorn.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// lumberjack opens lazily, so probe the path now to surface errors.
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	f.Close()

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	sink = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
	}

	l := logrus.New()
	l.SetOutput(sink)
	l.SetLevel(level.logrusLevel())
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	logger = l
	return nil
}

func closeSinkLocked() error {
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	return err
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	if level != LevelOff {
		logger.SetLevel(level.logrusLevel())
	}
}

func GetLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

// Close flushes and closes the log file if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := closeSinkLocked()
	logger = newDiscardLogger()
	return err
}

func enabled(level LogLevel) (*logrus.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	if currentLevel == LevelOff || level < currentLevel {
		return nil, false
	}
	return logger, true
}

func Debugf(format string, args ...any) {
	if l, ok := enabled(LevelDebug); ok {
		l.Debugf(format, args...)
	}
}

func Infof(format string, args ...any) {
	if l, ok := enabled(LevelInfo); ok {
		l.Infof(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if l, ok := enabled(LevelWarn); ok {
		l.Warnf(format, args...)
	}
}

func Errorf(format string, args ...any) {
	if l, ok := enabled(LevelError); ok {
		l.Errorf(format, args...)
	}
}

// FieldLogger carries structured key/value pairs onto every message.
type FieldLogger struct {
	fields logrus.Fields
}

func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: logrus.Fields(fields)}
}

func (fl *FieldLogger) entry(level LogLevel) (*logrus.Entry, bool) {
	l, ok := enabled(level)
	if !ok {
		return nil, false
	}
	return l.WithFields(fl.fields), true
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	if e, ok := fl.entry(LevelDebug); ok {
		e.Debugf(format, args...)
	}
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	if e, ok := fl.entry(LevelInfo); ok {
		e.Infof(format, args...)
	}
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	if e, ok := fl.entry(LevelWarn); ok {
		e.Warnf(format, args...)
	}
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	if e, ok := fl.entry(LevelError); ok {
		e.Errorf(format, args...)
	}
}
