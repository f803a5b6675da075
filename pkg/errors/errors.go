package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents a source that cannot run as configured (no cards, unknown id)
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeRender represents a navigation or selector wait that degraded
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeExtraction represents a single candidate element that could not be parsed
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeNormalization represents a bundle dropped by the normalizer
	ErrorTypeNormalization ErrorType = "normalization"
	// ErrorTypeReconciliation represents a store read/write failure for one record
	ErrorTypeReconciliation ErrorType = "reconciliation"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeFatal represents anything that aborts a whole source run
	ErrorTypeFatal ErrorType = "fatal"
)

// CampaignError represents an issue raised while processing one source
type CampaignError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CampaignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *CampaignError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the error aborts the source run
func (e *CampaignError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeFatal:
		return true
	default:
		return false
	}
}

// Counted reports whether the issue counts toward a source's error total.
// Render degradations are logged but the run proceeds on partial HTML.
func (e *CampaignError) Counted() bool {
	return e.Type != ErrorTypeRender
}

// New creates a new CampaignError
func New(errType ErrorType, source, message string, err error) *CampaignError {
	return &CampaignError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(source, message string, err error) *CampaignError {
	return New(ErrorTypeConfiguration, source, message, err)
}

// NewRender creates a new render degradation notice
func NewRender(source, message string, err error) *CampaignError {
	return New(ErrorTypeRender, source, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *CampaignError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(source, message string, err error) *CampaignError {
	return New(ErrorTypeExtraction, source, message, err)
}

// NewNormalization creates a new normalization error
func NewNormalization(source, message string, err error) *CampaignError {
	return New(ErrorTypeNormalization, source, message, err)
}

// NewReconciliation creates a new reconciliation error
func NewReconciliation(source, message string, err error) *CampaignError {
	return New(ErrorTypeReconciliation, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *CampaignError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *CampaignError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewFatal creates a new fatal source error
func NewFatal(source, message string, err error) *CampaignError {
	return New(ErrorTypeFatal, source, message, err)
}
