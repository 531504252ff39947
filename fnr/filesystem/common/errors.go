package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Common error types used across filesystem packages
var (
	ErrPathEmpty        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long (max 4096 characters)")
	ErrPathInvalid      = errors.New("path contains invalid characters")
	ErrNotLocal         = errors.New("not a local file")
	ErrSourceNotExist   = errors.New("source does not exist")
	ErrEmptyRoots       = errors.New("no roots to walk")
	ErrConflict         = errors.New("destination already exists")
	ErrConversionFailed = errors.New("name cannot be converted under the encoding")
	ErrInvalidName      = errors.New("not usable as a file name")
)

// RenameError records a failed move of one entry.
type RenameError struct {
	Src string
	Dst string
	Err error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// ValidationUtils provides common validation utilities used across packages
type ValidationUtils struct{}

// NewValidationUtils creates a new ValidationUtils instance
func NewValidationUtils() *ValidationUtils {
	return &ValidationUtils{}
}

// ValidatePath validates that a path is present, bounded and free of NUL bytes
func (vu *ValidationUtils) ValidatePath(path string) error {
	if path == "" {
		return ErrPathEmpty
	}
	if len(path) > 4096 {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return ErrPathInvalid
	}
	return nil
}

// ValidateBasename validates that name can be used as a single path element
func (vu *ValidationUtils) ValidateBasename(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\x00") {
		return ErrInvalidName
	}
	return nil
}

// ValidateFileExists validates that a file exists without following symlinks
func (vu *ValidationUtils) ValidateFileExists(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSourceNotExist
		}
		return fmt.Errorf("failed to access file %s: %w", path, err)
	}
	return nil
}

// ErrorUtils provides common error handling utilities
type ErrorUtils struct {
	logger zerolog.Logger
}

// NewErrorUtils creates a new ErrorUtils instance
func NewErrorUtils(logger zerolog.Logger) *ErrorUtils {
	return &ErrorUtils{logger: logger}
}

// WrapError wraps an error with additional context
func (eu *ErrorUtils) WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// HandleOperationError logs a failed operation and wraps the error with its context
func (eu *ErrorUtils) HandleOperationError(err error, operation, path string) error {
	if err == nil {
		return nil
	}

	eu.logger.Warn().
		Str("operation", operation).
		Str("path", path).
		Err(err).
		Msg("operation failed")

	return eu.WrapError(err, "failed to %s %s", operation, path)
}
