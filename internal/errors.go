package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType int

const (
	ErrUnrecognizedFormat ErrorType = iota
	ErrEmptyAlphabet
	ErrInvalidCredentials
	ErrAuthRequired
	ErrTransport
	ErrPatternNotFound
	ErrNumericOverflow
	ErrTooLarge
	ErrScrapeFailed
	ErrFileSystem
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// HostError is the error returned by every file host operation.
// Step names the protocol stage that failed (bootstrap, login, upload, ...).
type HostError struct {
	Type       ErrorType              `json:"type"`
	Severity   ErrorSeverity          `json:"severity"`
	Step       string                 `json:"step,omitempty"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	URL        string                 `json:"url,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *HostError) Error() string {
	var b strings.Builder
	if e.Step != "" {
		b.WriteString(e.Step)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *HostError) Unwrap() error {
	return e.Cause
}

// DetailedError returns a detailed error message with all available information
func (e *HostError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s] %s Error", e.Severity.String(), e.Type.String()))

	if e.Step != "" {
		parts = append(parts, fmt.Sprintf("Step: %s", e.Step))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("Status: %d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, fmt.Sprintf("Message: %s", e.Message))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}

	// URLs may embed download tokens
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("URL: %s", redactSensitiveURL(e.URL)))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("Context: %s", strings.Join(contextParts, ", ")))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, "\n")
}

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrUnrecognizedFormat:
		return "UnrecognizedFormat"
	case ErrEmptyAlphabet:
		return "EmptyAlphabet"
	case ErrInvalidCredentials:
		return "InvalidCredentials"
	case ErrAuthRequired:
		return "AuthRequired"
	case ErrTransport:
		return "Transport"
	case ErrPatternNotFound:
		return "PatternNotFound"
	case ErrNumericOverflow:
		return "NumericOverflow"
	case ErrTooLarge:
		return "TooLarge"
	case ErrScrapeFailed:
		return "ScrapeFailed"
	case ErrFileSystem:
		return "FileSystem"
	default:
		return "Unknown"
	}
}

// String returns the string representation of ErrorSeverity
func (es ErrorSeverity) String() string {
	switch es {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// NewHostError creates a new HostError with default severity and suggestion
func NewHostError(errorType ErrorType, message string) *HostError {
	return &HostError{
		Type:       errorType,
		Message:    message,
		Severity:   getDefaultSeverity(errorType),
		Suggestion: getDefaultSuggestion(errorType),
		Context:    make(map[string]interface{}),
	}
}

// WrapHostError creates a HostError around an underlying cause
func WrapHostError(errorType ErrorType, message string, cause error) *HostError {
	err := NewHostError(errorType, message)
	err.Cause = cause
	return err
}

// WithStep records the protocol step that failed
func (e *HostError) WithStep(step string) *HostError {
	e.Step = step
	return e
}

// WithStatus records the HTTP status of the failing response
func (e *HostError) WithStatus(code int) *HostError {
	e.StatusCode = code
	return e
}

// WithSuggestion adds a custom suggestion to the error
func (e *HostError) WithSuggestion(suggestion string) *HostError {
	e.Suggestion = suggestion
	return e
}

// WithURL adds URL context to the error (will be redacted in logs)
func (e *HostError) WithURL(url string) *HostError {
	e.URL = url
	return e
}

// WithContext adds context information to the error
func (e *HostError) WithContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsCritical returns true if the error is critical and should stop execution
func (e *HostError) IsCritical() bool {
	return e.Severity == SeverityCritical
}

// IsErrorType reports whether any HostError in err's chain has the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	for err != nil {
		var hostErr *HostError
		if !errors.As(err, &hostErr) {
			return false
		}
		if hostErr.Type == errorType {
			return true
		}
		err = hostErr.Cause
	}
	return false
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field      string                 `json:"field"`
	Message    string                 `json:"message"`
	Value      interface{}            `json:"value,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := []string{fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("Suggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, " - ")
}

// DetailedError returns a detailed validation error message
func (e *ValidationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Validation Error for field '%s'", e.Field))
	parts = append(parts, fmt.Sprintf("Message: %s", e.Message))

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("Provided value: %v", e.Value))
	}

	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return strings.Join(parts, "\n")
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewValidationErrorWithValue creates a ValidationError with the invalid value
func NewValidationErrorWithValue(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Context: make(map[string]interface{}),
	}
}

// WithSuggestion adds a suggestion to the validation error
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.Suggestion = suggestion
	return e
}

// getDefaultSuggestion returns a default suggestion based on error type
func getDefaultSuggestion(errorType ErrorType) string {
	switch errorType {
	case ErrUnrecognizedFormat:
		return "Please provide a file URL like https://www12.zippyshare.com/v/AbCd1234/file.html"
	case ErrInvalidCredentials:
		return "Check the username and password, or set ZIPPYFETCH_USERNAME and ZIPPYFETCH_PASSWORD"
	case ErrAuthRequired:
		return "Uploads require an account. Provide --user and --password"
	case ErrTransport:
		return "Check your internet connection and try again. Consider using a proxy if needed"
	case ErrPatternNotFound, ErrScrapeFailed:
		return "The site layout may have changed or the file was removed"
	case ErrTooLarge:
		return "Split the file into parts no larger than 500 MB"
	case ErrFileSystem:
		return "Check file/directory permissions and available disk space"
	default:
		return ""
	}
}

// getDefaultSeverity returns the default severity for an error type
func getDefaultSeverity(errorType ErrorType) ErrorSeverity {
	switch errorType {
	case ErrTransport:
		return SeverityWarning
	case ErrFileSystem:
		return SeverityCritical
	default:
		return SeverityError
	}
}

// redactSensitiveURL redacts sensitive information from URLs
func redactSensitiveURL(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		url = url[:i] + "?[REDACTED]"
	}
	// /d/<file>/<token>/<name>
	if i := strings.Index(url, "/d/"); i >= 0 {
		segs := strings.Split(url[i+3:], "/")
		if len(segs) >= 2 {
			segs[1] = "[REDACTED]"
			url = url[:i+3] + strings.Join(segs, "/")
		}
	}
	return url
}

// Common error constructors for frequently used errors

// NewUnrecognizedFormatError creates an error for URLs outside the canonical grammar
func NewUnrecognizedFormatError(url string) *HostError {
	return NewHostError(ErrUnrecognizedFormat, "unrecognized file URL format").WithURL(url)
}

// NewInvalidCredentialsError creates the error reported when login yields no session
func NewInvalidCredentialsError() *HostError {
	return NewHostError(ErrInvalidCredentials, "username or password do not match").WithStep("login")
}

// NewTransportError wraps a failed request or a non-success response
func NewTransportError(step string, status int, cause error) *HostError {
	msg := "request failed"
	if status != 0 {
		msg = fmt.Sprintf("unexpected HTTP status %d", status)
	}
	return WrapHostError(ErrTransport, msg, cause).WithStep(step).WithStatus(status)
}

// NewPatternNotFoundError reports that an extraction rule did not match
func NewPatternNotFoundError(rule string) *HostError {
	return NewHostError(ErrPatternNotFound, fmt.Sprintf("%s not found in page", rule)).
		WithContext("rule", rule)
}

// NewTooLargeError reports a file exceeding the host's upload limit
func NewTooLargeError(size, limit int64) *HostError {
	return NewHostError(ErrTooLarge, fmt.Sprintf("file size %d exceeds limit %d", size, limit)).
		WithContext("size", size).
		WithContext("limit", limit)
}

// NewScrapeFailedError wraps an extraction failure during an orchestrated call
func NewScrapeFailedError(step string, cause error) *HostError {
	return WrapHostError(ErrScrapeFailed, "could not scrape response", cause).WithStep(step)
}
