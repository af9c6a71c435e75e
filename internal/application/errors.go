package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound              = errors.New("not found")
	ErrRootNotFound          = errors.New("media root not found")
	ErrInvalidMode           = errors.New("invalid run mode")
	ErrMoveCollision         = errors.New("move collision")
	ErrMoveFailure           = errors.New("move failure")
	ErrManifestInconsistency = errors.New("manifest inconsistency")
	ErrRunLocked             = errors.New("another run holds the lock for this root")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MoveErrorKind separates unresolved collisions from other move failures
type MoveErrorKind int

const (
	MoveErrorFailure MoveErrorKind = iota
	MoveErrorCollision
)

// MoveError represents a per-file move failure
type MoveError struct {
	File   string
	Target string
	Reason string
	Kind   MoveErrorKind
}

func (e *MoveError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("cannot move %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("cannot move %s to %s: %s", e.File, e.Target, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	switch e.Kind {
	case MoveErrorCollision:
		return target == ErrMoveCollision
	default:
		return target == ErrMoveFailure
	}
}

// ManifestError reports a manifest entry with no file behind it
type ManifestError struct {
	Path string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest references missing path %s", e.Path)
}

func (e *ManifestError) Is(target error) bool {
	return target == ErrManifestInconsistency
}
