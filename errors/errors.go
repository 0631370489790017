// Package errors provides standardized error handling for the analysis
// pipeline. It defines the frame-level failure kinds raised by the parser
// and iterator, error classification for boundary mapping, and helper
// functions for consistent error wrapping across the system.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Frame-level failure kinds. Each is distinguishable by the caller with
// errors.Is; the HTTP boundary maps every kind to a client response.
var (
	// ErrEmptyFile indicates a zero-length upload
	ErrEmptyFile = errors.New("empty file")
	// ErrFileTooSmall indicates the stream is too small to contain a minimal frame header
	ErrFileTooSmall = errors.New("file too small to contain an audio frame")
	// ErrCorruptedHeader indicates a frame header with an invalid bitrate/sample-rate encoding
	ErrCorruptedHeader = errors.New("corrupted frame header")
	// ErrTruncatedFrame indicates a frame whose declared length exceeds the available bytes
	ErrTruncatedFrame = errors.New("truncated frame")
	// ErrFrameAlignment indicates the next frame was not found near its expected offset
	ErrFrameAlignment = errors.New("frame alignment error")
	// ErrCorruptedFrame is the catch-all for unexpected failures while parsing a frame
	ErrCorruptedFrame = errors.New("corrupted frame")
	// ErrNoValidFrames indicates the stream was scanned to completion without usable frames
	ErrNoValidFrames = errors.New("no valid audio frames found")
	// ErrUnsupportedFormat indicates a detected format with no registered parser
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrUploadTooLarge indicates an upload that exceeded the configured size cap
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
)

// Configuration and misuse errors, raised at startup or on API misuse
// rather than against a particular input stream.
var (
	// ErrDuplicateParser indicates two parsers registered under the same (version, layer) key
	ErrDuplicateParser = errors.New("parser already registered for format")
	// ErrIteratorBusy indicates a second Next call while one is still pending
	ErrIteratorBusy = errors.New("iterator has a pending read")
	// ErrInvalidConfig indicates an invalid configuration value
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMissingConfig indicates a missing required configuration value
	ErrMissingConfig = errors.New("missing required configuration")
)

// Connection and storage errors
var (
	ErrNoConnection       = errors.New("no connection available")
	ErrConnectionTimeout  = errors.New("connection timeout")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrKeyNotFound        = errors.New("key not found")
	ErrAlreadyStarted     = errors.New("component already started")
	ErrNotStarted         = errors.New("component not started")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and may be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// IsFatal checks if an error is fatal and should stop the process
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrDuplicateParser)
}

// IsInvalid checks if an error is due to invalid input.
// Every frame-level failure kind classifies as invalid: corruption is a
// property of the uploaded bytes, never of the system, so it is reported
// to the client rather than retried.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrFileTooSmall) ||
		errors.Is(err, ErrCorruptedHeader) ||
		errors.Is(err, ErrTruncatedFrame) ||
		errors.Is(err, ErrFrameAlignment) ||
		errors.Is(err, ErrCorruptedFrame) ||
		errors.Is(err, ErrNoValidFrames) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUploadTooLarge)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	switch {
	case IsInvalid(err):
		return ErrorInvalid
	case IsFatal(err):
		return ErrorFatal
	default:
		return ErrorTransient
	}
}

// newClassified creates a new classified error.
// Internal helper - use WrapTransient(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// Kind returns a short machine-readable label for a failure, suitable for
// metrics labels and API error payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyFile):
		return "empty_file"
	case errors.Is(err, ErrFileTooSmall):
		return "file_too_small"
	case errors.Is(err, ErrCorruptedHeader):
		return "corrupted_header"
	case errors.Is(err, ErrTruncatedFrame):
		return "truncated_frame"
	case errors.Is(err, ErrFrameAlignment):
		return "frame_alignment"
	case errors.Is(err, ErrCorruptedFrame):
		return "corrupted_frame"
	case errors.Is(err, ErrNoValidFrames):
		return "no_valid_frames"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrUploadTooLarge):
		return "upload_too_large"
	case IsTransient(err):
		return "transient"
	default:
		return "internal"
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
