package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Logger provides leveled logging. Output goes to stderr (or a file) so
// stdout stays clean for MCP stdio JSON-RPC.
type Logger struct {
	logger   *log.Logger
	logLevel LogLevel
}

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
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

var defaultLogger *Logger

// InitLogger initializes the default logger from environment variables.
func InitLogger() {
	logLevel := getEnvLogLevel("TWITTERAPI_LOG_LEVEL", INFO)
	logFile := getEnv("TWITTERAPI_LOG_FILE", "")

	var writer *os.File
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
			writer = os.Stderr
		} else {
			var err error
			writer, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
				writer = os.Stderr
			}
		}
	} else {
		writer = os.Stderr
	}

	defaultLogger = &Logger{
		logger:   log.New(writer, "", log.LstdFlags),
		logLevel: logLevel,
	}
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	if defaultLogger == nil {
		InitLogger()
	}
	return defaultLogger
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.logLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s", level.String(), msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func getEnvLogLevel(key string, fallback LogLevel) LogLevel {
	switch getEnv(key, "") {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return fallback
	}
}
