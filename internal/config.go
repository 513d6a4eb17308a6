package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mcuadros/go-defaults"
)

// Config holds application configuration
type Config struct {
	Timeout   int    `default:"60" validate:"min=1,max=86400"`
	ProxyURL  string `validate:"omitempty,url"`
	UserAgent string `default:"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/120.0" validate:"required"`
	RateLimit string

	// Account used for uploads
	Username string
	Password string

	// Logging configuration
	LogLevel    string `default:"info" validate:"oneof=debug info warn warning error"`
	EnableDebug bool
	QuietMode   bool
	LogFile     string
}

var validate = validator.New()

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if timeout := os.Getenv("ZIPPYFETCH_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil && t > 0 {
			c.Timeout = t
		}
	}

	c.ProxyURL = GetEnvWithDefault("ZIPPYFETCH_PROXY", c.ProxyURL)
	c.UserAgent = GetEnvWithDefault("ZIPPYFETCH_USER_AGENT", c.UserAgent)
	c.RateLimit = GetEnvWithDefault("ZIPPYFETCH_LIMIT_RATE", c.RateLimit)
	c.Username = GetEnvWithDefault("ZIPPYFETCH_USERNAME", c.Username)
	c.Password = GetEnvWithDefault("ZIPPYFETCH_PASSWORD", c.Password)

	c.LogLevel = GetEnvWithDefault("ZIPPYFETCH_LOG_LEVEL", c.LogLevel)
	if debug := os.Getenv("ZIPPYFETCH_DEBUG"); debug != "" {
		c.EnableDebug = debug == "true" || debug == "1"
	}
	if quiet := os.Getenv("ZIPPYFETCH_QUIET"); quiet != "" {
		c.QuietMode = quiet == "true" || quiet == "1"
	}
	c.LogFile = GetEnvWithDefault("ZIPPYFETCH_LOG_FILE", c.LogFile)
}

// GetEnvWithDefault returns environment variable value or default
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ValidateConfig validates the configuration values
func (c *Config) ValidateConfig() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	message := fmt.Sprintf("failed '%s' check", fe.Tag())
	if fe.Param() != "" {
		message = fmt.Sprintf("failed '%s=%s' check", fe.Tag(), fe.Param())
	}
	return NewValidationErrorWithValue(strings.ToLower(fe.Field()), message, fe.Value())
}
