package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[SecureLogger]

var levelNames = map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}

// InitLogger installs the process logger described by config. Logs go to
// config.LogFile when set, stderr otherwise.
func InitLogger(config *Config) error {
	var output io.Writer = os.Stderr
	if config.LogFile != "" {
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return NewValidationErrorWithValue("logfile", "failed to open log file", config.LogFile).
				WithSuggestion(fmt.Sprintf("Check file permissions and path validity (%v)", err))
		}
		output = file
	}

	current.Store(NewSecureLogger(output, parseLogLevel(config.LogLevel), config.EnableDebug, config.QuietMode))
	return nil
}

// GetLogger returns the process logger, creating a stderr logger at info
// level on first use
func GetLogger() *SecureLogger {
	if logger := current.Load(); logger != nil {
		return logger
	}
	current.CompareAndSwap(nil, NewDefaultLogger(false, false))
	return current.Load()
}

// parseLogLevel maps a config level name to a LogLevel; unknown names are info
func parseLogLevel(level string) LogLevel {
	if l, ok := levelNames[strings.ToLower(level)]; ok {
		return l
	}
	return LogLevelInfo
}

func LogError(format string, args ...interface{}) { GetLogger().Error(format, args...) }
func LogWarn(format string, args ...interface{})  { GetLogger().Warn(format, args...) }
func LogInfo(format string, args ...interface{})  { GetLogger().Info(format, args...) }
func LogDebug(format string, args ...interface{}) { GetLogger().Debug(format, args...) }

// LogAnyError reports err at a level matching its severity. Host and
// validation errors are logged with their full detail.
func LogAnyError(err error) {
	if err == nil {
		return
	}

	logger := GetLogger()

	var hostErr *HostError
	if errors.As(err, &hostErr) {
		detail := hostErr.DetailedError()
		switch hostErr.Severity {
		case SeverityCritical:
			logger.Error("CRITICAL: %s", detail)
		case SeverityWarning:
			logger.Warn("%s", detail)
		case SeverityInfo:
			logger.Info("%s", detail)
		default:
			logger.Error("%s", detail)
		}
		return
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		logger.Error("Validation Error: %s", validationErr.DetailedError())
		return
	}

	logger.Error("%v", err)
}
