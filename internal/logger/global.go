package logger

import (
	"fmt"
	"os"
	"strings"
)

var globalLogger *Logger

func init() {
	globalLogger = NewDefault()
	configureFromEnv()
}

// configureFromEnv applies LOG_LEVEL and LOG_FORMAT to the global logger
func configureFromEnv() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure applies textual level and format settings to the global logger.
// Unknown or empty values leave the current setting untouched.
func Configure(level, format string) {
	if level != "" {
		if lv := ParseLogLevel(level); lv != -1 {
			globalLogger.SetLevel(lv)
		}
	}
	if format != "" {
		if f := ParseLogFormat(format); f != -1 {
			globalLogger.SetFormat(f)
		}
	}
}

// ParseLogLevel parses a log level string, returning -1 when unknown
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return -1
	}
}

// ParseLogFormat parses a log format string, returning -1 when unknown
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONFormat
	case "text", "console":
		return TextFormat
	default:
		return -1
	}
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// Debug logs a debug message using the global logger
func Debug(message string, fields ...map[string]interface{}) {
	globalLogger.log(DEBUG, message, firstFields(fields), nil)
}

// Info logs an info message using the global logger
func Info(message string, fields ...map[string]interface{}) {
	globalLogger.log(INFO, message, firstFields(fields), nil)
}

// Warn logs a warning message using the global logger
func Warn(message string, fields ...map[string]interface{}) {
	globalLogger.log(WARN, message, firstFields(fields), nil)
}

// Error logs an error message using the global logger
func Error(message string, err error, fields ...map[string]interface{}) {
	globalLogger.log(ERROR, message, firstFields(fields), err)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, fields ...map[string]interface{}) {
	globalLogger.log(FATAL, message, firstFields(fields), err)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	globalLogger.log(INFO, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	globalLogger.log(WARN, fmt.Sprintf(format, args...), nil, nil)
}
