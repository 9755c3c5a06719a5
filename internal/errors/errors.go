package errors

import (
	"fmt"
	"time"
)

// Error types for the sarifnav normalization core
type ErrorType string

const (
	// Region errors
	ErrorTypeMalformedRegion ErrorType = "malformed_region"

	// Artifact resolution errors
	ErrorTypeUnresolvableArtifact ErrorType = "unresolvable_artifact"
	ErrorTypeEmbeddedContent      ErrorType = "embedded_content"

	// Log errors
	ErrorTypeSchemaVersion ErrorType = "schema_version_unsupported"
	ErrorTypeDecode        ErrorType = "decode"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// RegionError reports a contradictory or unsupported region field
// combination. Callers degrade to the default range rather than failing the
// result, so this type exists mainly for debug logging.
type RegionError struct {
	Type      ErrorType
	Detail    string
	Timestamp time.Time
}

// NewRegionError creates a new malformed-region error
func NewRegionError(detail string) *RegionError {
	return &RegionError{
		Type:      ErrorTypeMalformedRegion,
		Detail:    detail,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *RegionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Detail)
}

// ArtifactError reports a failed artifact resolution attempt. The record it
// belongs to stays visible as unmapped; the error records which strategies
// were exhausted.
type ArtifactError struct {
	Type       ErrorType
	LoggedPath string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewArtifactError creates a new unresolvable-artifact error
func NewArtifactError(op, loggedPath string, err error) *ArtifactError {
	return &ArtifactError{
		Type:       ErrorTypeUnresolvableArtifact,
		LoggedPath: loggedPath,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewEmbeddedContentError reports a failure materializing embedded artifact
// content to a temporary file.
func NewEmbeddedContentError(loggedPath string, err error) *ArtifactError {
	return &ArtifactError{
		Type:       ErrorTypeEmbeddedContent,
		LoggedPath: loggedPath,
		Operation:  "materialize",
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ArtifactError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.LoggedPath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed for %s", e.Type, e.Operation, e.LoggedPath)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ArtifactError) Unwrap() error {
	return e.Underlying
}

// SchemaError reports an unsupported or undecodable log. Normalization of
// that run is aborted before it starts; other runs proceed.
type SchemaError struct {
	Type       ErrorType
	Path       string
	Version    string
	Underlying error
	Timestamp  time.Time
}

// NewSchemaVersionError creates an error for a log whose version this core
// does not handle; upgrade tooling is an external collaborator.
func NewSchemaVersionError(path, version string) *SchemaError {
	return &SchemaError{
		Type:      ErrorTypeSchemaVersion,
		Path:      path,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDecodeError creates an error for a log that failed JSON decoding
func NewDecodeError(path string, err error) *SchemaError {
	return &SchemaError{
		Type:       ErrorTypeDecode,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Type == ErrorTypeSchemaVersion {
		return fmt.Sprintf("unsupported log schema version %q in %s", e.Version, e.Path)
	}
	return fmt.Sprintf("failed to decode log %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SchemaError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
