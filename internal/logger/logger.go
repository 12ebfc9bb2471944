// Package logger provides the structured logger shared by every component.
//
// The logger is passed by reference into each component; nothing below the
// CLI layer reaches for a package-level instance. Credentials for the
// SonarQube and Stash servers flow through log messages, so all output is
// run through a small set of masking rules first.
package logger

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Level represents logging levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name from configuration. Unknown names map to
// LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// secretPatterns match credentials that must never reach the log output.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sq[aup]_[a-f0-9]{40})`),                        // SonarQube tokens
	regexp.MustCompile(`(?i)(Bearer\s+[a-zA-Z0-9._-]+)`),                    // Bearer tokens
	regexp.MustCompile(`(?i)(password[=:]\s*["']?[^\s"']{4,}["']?)`),        // Passwords
	regexp.MustCompile(`(?i)(token[=:]\s*["']?[a-zA-Z0-9._-]{16,}["']?)`),   // Generic tokens
	regexp.MustCompile(`(?i)(secret[=:]\s*["']?[a-zA-Z0-9._-]{8,}["']?)`),   // Generic secrets
	regexp.MustCompile(`//[^/\s:]+:[^@\s]+@`),                               // userinfo in URLs
}

// sensitiveFieldNames are structured-field keys whose values are always
// masked.
var sensitiveFieldNames = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
	"login":    true,
}

// Logger is a leveled, structured logger with secret masking.
type Logger struct {
	level  Level
	output io.Writer
	prefix string
	fields map[string]interface{}
	mu     sync.Mutex
}

var defaultLogger *Logger
var once sync.Once

// Default returns the process default logger. It exists for the CLI edge;
// components receive their logger through their constructors.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(LevelInfo, os.Stderr)
	})
	return defaultLogger
}

// New creates a new logger writing to output.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: output,
		fields: make(map[string]interface{}),
	}
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// WithPrefix returns a new logger with the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		level:  l.level,
		output: l.output,
		prefix: prefix,
		fields: l.fields,
	}
}

// WithField returns a new logger with the field added.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the fields added.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		level:  l.level,
		output: l.output,
		prefix: l.prefix,
		fields: merged,
	}
}

func mask(s string) string {
	for _, pattern := range secretPatterns {
		s = pattern.ReplaceAllStringFunc(s, maskString)
	}
	return s
}

// maskString keeps only the first and last four characters.
func maskString(s string) string {
	if len(s) <= 8 {
		return "***MASKED***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

func maskValue(key string, value interface{}) interface{} {
	if sensitiveFieldNames[strings.ToLower(key)] {
		if str, ok := value.(string); ok {
			return maskString(str)
		}
		return "***MASKED***"
	}
	if str, ok := value.(string); ok {
		return mask(str)
	}
	return value
}

func (l *Logger) formatFields() string {
	if len(l.fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(l.fields))
	for k, v := range l.fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, maskValue(k, v)))
	}
	return " " + strings.Join(parts, " ")
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}
	formatted = mask(formatted)

	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}

	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	fmt.Fprintf(l.output, "%s %s %s%s%s\n",
		timestamp, level.String(), prefix, formatted, l.formatFields())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// MaskSecrets masks all known secret patterns in a string.
func MaskSecrets(s string) string {
	return mask(s)
}
