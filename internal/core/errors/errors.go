// Package errors provides the categorized error type shared by every
// component so the phase framework and orchestrator can tell a retryable
// transient failure from a fatal configuration error.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies where in the pipeline an error originated.
type Category string

const (
	CategoryInput     Category = "input"
	CategoryStore     Category = "store"
	CategoryRender    Category = "render"
	CategoryModel     Category = "model"
	CategoryPlan      Category = "plan"
	CategoryExport    Category = "export"
	CategoryConfig    Category = "config"
	CategoryTransient Category = "transient"
)

// PipelineError is the structured error type used throughout the module.
// ImageID is empty for errors not tied to a specific image (config, store-open).
type PipelineError struct {
	Category  Category
	Op        string
	ImageID   string
	Err       error
	Retryable bool
}

func (e *PipelineError) Error() string {
	if e.ImageID != "" {
		return fmt.Sprintf("[%s] %s (image=%s): %v", e.Category, e.Op, e.ImageID, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// New creates a non-retryable PipelineError.
func New(category Category, op string, err error) *PipelineError {
	return &PipelineError{Category: category, Op: op, Err: err}
}

// ForImage creates a non-retryable PipelineError scoped to one image.
func ForImage(category Category, op, imageID string, err error) *PipelineError {
	return &PipelineError{Category: category, Op: op, ImageID: imageID, Err: err}
}

// Transient creates a retryable PipelineError (store lock contention, model
// rate limits and timeouts).
func Transient(op string, err error) *PipelineError {
	return &PipelineError{Category: CategoryTransient, Op: op, Err: err, Retryable: true}
}

// IsRetryable reports whether err (or something it wraps) is retryable.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes named by the spec.
var (
	ErrDuplicateRelativePath = errors.New("duplicate relative path")
	ErrStoreLocked           = errors.New("store: locked after max retries")
	ErrStoreCorrupt          = errors.New("store: corrupt column")
	ErrUnsupportedFormat     = errors.New("unsupported source format")
)
