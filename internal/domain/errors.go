package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("conflict with current state")
	ErrDisabled     = errors.New("integration disabled")
)

// GenerationError signals an audit-file build that could not produce a
// complete document (serialization or schema fault). It always carries the
// original cause; a failed build never emits a partial file.
type GenerationError struct {
	FileType string // "sales" or "payroll"
	Stage    string // build stage that failed
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("saf-t %s generation failed at %s: %v", e.FileType, e.Stage, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// NewGenerationError wraps a build fault with its file type and stage.
func NewGenerationError(fileType, stage string, cause error) *GenerationError {
	return &GenerationError{FileType: fileType, Stage: stage, Cause: cause}
}
