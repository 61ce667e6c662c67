package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies tracker errors
type ErrorType string

const (
	// ErrorTypeUnsupportedVendor means no extraction strategy matches the URL
	ErrorTypeUnsupportedVendor ErrorType = "unsupported_vendor"
	// ErrorTypeFetch represents navigation, timeout, or HTTP failures
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeExtraction means no usable price was found on the page
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeReconcile represents offer-store write failures
	ErrorTypeReconcile ErrorType = "reconcile"
	// ErrorTypeBatchLoad means the tracked-link set could not be read at all
	ErrorTypeBatchLoad ErrorType = "batch_load"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// TrackerError represents a tracker-specific error
type TrackerError struct {
	Type    ErrorType
	Vendor  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Vendor, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Vendor, e.Message)
}

// Unwrap returns the underlying error
func (e *TrackerError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the caller may retry the failed operation.
// Only store writes are retried in place; a broken fetch or parse waits
// for the next scheduled cycle.
func (e *TrackerError) IsRetryable() bool {
	return e.Type == ErrorTypeReconcile
}

// New creates a new TrackerError
func New(errType ErrorType, vendor, message string, err error) *TrackerError {
	return &TrackerError{
		Type:    errType,
		Vendor:  vendor,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewUnsupportedVendor creates a new unsupported-vendor error
func NewUnsupportedVendor(url string) *TrackerError {
	return New(ErrorTypeUnsupportedVendor, "unknown", fmt.Sprintf("no strategy matches %s", url), nil)
}

// NewFetch creates a new fetch error
func NewFetch(vendor, message string, err error) *TrackerError {
	return New(ErrorTypeFetch, vendor, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(vendor, message string) *TrackerError {
	return New(ErrorTypeExtraction, vendor, message, nil)
}

// NewReconcile creates a new reconcile error
func NewReconcile(vendor, message string, err error) *TrackerError {
	return New(ErrorTypeReconcile, vendor, message, err)
}

// NewBatchLoad creates a new batch-load error
func NewBatchLoad(message string, err error) *TrackerError {
	return New(ErrorTypeBatchLoad, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *TrackerError {
	return New(ErrorTypeConfiguration, "", message, err)
}
