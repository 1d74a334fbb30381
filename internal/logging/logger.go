package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

var levelColors = map[LogLevel]*color.Color{
	LevelError: color.New(color.FgRed, color.Bold),
	LevelWarn:  color.New(color.FgYellow),
	LevelInfo:  color.New(color.FgCyan),
	LevelDebug: color.New(color.FgHiBlack),
	LevelTrace: color.New(color.FgHiBlack),
}

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name (case-insensitive) to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "INFO":
		return LevelInfo, true
	case "DEBUG":
		return LevelDebug, true
	case "TRACE":
		return LevelTrace, true
	}
	return LevelWarn, false
}

// sink is shared by a logger and every logger derived from it with WithPrefix,
// so SetLevel on the root affects all of them.
type sink struct {
	mu     sync.RWMutex
	level  LogLevel
	color  bool
	logger *log.Logger
}

// Logger provides leveled, prefixed logging. Listing output goes to stdout, so
// log lines are written to stderr by default.
type Logger struct {
	prefix string
	sink   *sink
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("ghostls", os.Stderr)

		// Set initial log level from environment
		if level, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			defaultLogger.SetLevel(level)
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger with the given prefix writing to w.
func NewLogger(prefix string, w io.Writer) *Logger {
	flags := log.Ltime | log.Lmicroseconds
	if os.Getenv("LOG_LONGFILE") != "" {
		flags |= log.Llongfile
	}

	return &Logger{
		prefix: prefix,
		sink: &sink{
			level:  LevelWarn,
			color:  isTerminal(w),
			logger: log.New(w, "", flags),
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the current logging level.
func (l *Logger) Level() LogLevel {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	return l.sink.level
}

// SetOutput redirects log output, e.g. to io.Discard in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.logger.SetOutput(w)
	l.sink.color = isTerminal(w)
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level <= l.Level()
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	l.sink.mu.RLock()
	useColor := l.sink.color
	out := l.sink.logger
	l.sink.mu.RUnlock()

	tag := "[" + level.String() + "]"
	if useColor {
		tag = levelColors[level].Sprint(tag)
	}
	msg := fmt.Sprintf(format, args...)
	if err := out.Output(3, fmt.Sprintf("%s %s: %s", tag, l.prefix, msg)); err != nil {
		// write directly to stderr
		fmt.Fprintf(os.Stderr, "Failed to write log message: %v\n", err)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}

// WithPrefix creates a logger that shares this logger's level and output but
// tags its lines with an additional prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		prefix: l.prefix + "/" + prefix,
		sink:   l.sink,
	}
}
