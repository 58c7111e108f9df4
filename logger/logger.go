// Package logger provides leveled, structured logging for the VoiceMart
// services. Entries go out as JSON by default so they can be shipped
// straight into a log collector; text mode is available for local runs.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// Level represents the severity of a log entry
type Level int

const (
	// DEBUG level for debug information
	DEBUG Level = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "WARN", "warning":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Entry is one structured log record.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller,omitempty"`
	Service   string         `json:"service,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Logger writes structured log entries.
type Logger struct {
	mu            sync.RWMutex
	level         Level
	output        io.Writer
	fields        map[string]any
	service       string
	jsonFormat    bool
	includeCaller bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// New creates a logger with defaults (INFO, stdout, JSON).
func New() *Logger {
	return &Logger{
		level:         INFO,
		output:        os.Stdout,
		fields:        make(map[string]any),
		jsonFormat:    true,
		includeCaller: true,
	}
}

// GetLogger returns the process-wide logger instance.
func GetLogger() *Logger {
	once.Do(func() {
		if globalLogger == nil {
			globalLogger = New()
		}
	})
	return globalLogger
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetJSONFormat enables or disables JSON formatting
func (l *Logger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonFormat = enabled
}

// SetService sets the service name stamped onto all entries
func (l *Logger) SetService(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.service = name
}

// SetIncludeCaller enables or disables caller information
func (l *Logger) SetIncludeCaller(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.includeCaller = enabled
}

// WithField creates a child logger with one additional field.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields creates a child logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &Logger{
		level:         l.level,
		output:        l.output,
		fields:        make(map[string]any, len(l.fields)+len(fields)),
		service:       l.service,
		jsonFormat:    l.jsonFormat,
		includeCaller: l.includeCaller,
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) log(level Level, msg string, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
		Fields:    l.fields,
		Service:   l.service,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if l.includeCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}
	if reqID, ok := l.fields["request_id"]; ok {
		entry.RequestID = fmt.Sprintf("%v", reqID)
	}

	if l.jsonFormat {
		l.writeJSON(entry)
	} else {
		l.writeText(entry)
	}
}

func (l *Logger) writeJSON(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: marshal entry: %v\n", err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) writeText(entry Entry) {
	output := fmt.Sprintf("[%s] [%s] ", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level)
	if entry.Service != "" {
		output += fmt.Sprintf("[%s] ", entry.Service)
	}
	if entry.RequestID != "" {
		output += fmt.Sprintf("[%s] ", entry.RequestID)
	}
	output += entry.Message
	if entry.Error != "" {
		output += fmt.Sprintf(" error=%s", entry.Error)
	}
	for k, v := range entry.Fields {
		if k != "request_id" {
			output += fmt.Sprintf(" %s=%v", k, v)
		}
	}
	if entry.Caller != "" {
		output += fmt.Sprintf(" caller=%s", entry.Caller)
	}
	fmt.Fprintln(l.output, output)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) { l.log(DEBUG, msg, nil) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) { l.log(DEBUG, fmt.Sprintf(format, args...), nil) }

// Info logs an info message
func (l *Logger) Info(msg string) { l.log(INFO, msg, nil) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) { l.log(INFO, fmt.Sprintf(format, args...), nil) }

// Warn logs a warning message
func (l *Logger) Warn(msg string) { l.log(WARN, msg, nil) }

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) { l.log(WARN, fmt.Sprintf(format, args...), nil) }

// Error logs an error message
func (l *Logger) Error(msg string, err error) { l.log(ERROR, msg, err) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) { l.log(ERROR, fmt.Sprintf(format, args...), nil) }
