package errors

import (
	"errors"
	"fmt"
)

// Common errors that can be used across packages
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNoInput          = errors.New("no terminal input available")
	ErrInternal         = errors.New("internal error")
)

// ValidationError represents an error that occurs during validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// FileError represents an error that occurs during file operations
type FileError struct {
	Path    string
	Op      string
	Wrapped error
}

func (e *FileError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s operation failed on %s: %v", e.Op, e.Path, e.Wrapped)
	}
	return fmt.Sprintf("%s operation failed on %s", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Wrapped
}

// NewFileError creates a new FileError
func NewFileError(path, op string, wrapped error) error {
	return &FileError{
		Path:    path,
		Op:      op,
		Wrapped: wrapped,
	}
}

// SnapshotError represents an error that occurs while creating or
// restoring a collection snapshot.
type SnapshotError struct {
	Op         string
	Collection string
	Wrapped    error
}

func (e *SnapshotError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("snapshot %s failed for collection %s: %v", e.Op, e.Collection, e.Wrapped)
	}
	return fmt.Sprintf("snapshot %s failed for collection %s", e.Op, e.Collection)
}

func (e *SnapshotError) Unwrap() error {
	return e.Wrapped
}

// NewSnapshotError creates a new SnapshotError
func NewSnapshotError(op, collection string, wrapped error) error {
	return &SnapshotError{
		Op:         op,
		Collection: collection,
		Wrapped:    wrapped,
	}
}

// ArtifactError represents an error that occurs during artifact operations
type ArtifactError struct {
	Op       string
	Artifact string
	Type     string
	Wrapped  error
}

func (e *ArtifactError) Error() string {
	if e.Type != "" {
		if e.Wrapped != nil {
			return fmt.Sprintf("artifact %s operation failed for %s (%s): %v", e.Op, e.Artifact, e.Type, e.Wrapped)
		}
		return fmt.Sprintf("artifact %s operation failed for %s (%s)", e.Op, e.Artifact, e.Type)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("artifact %s operation failed for %s: %v", e.Op, e.Artifact, e.Wrapped)
	}
	return fmt.Sprintf("artifact %s operation failed for %s", e.Op, e.Artifact)
}

func (e *ArtifactError) Unwrap() error {
	return e.Wrapped
}

// NewArtifactError creates a new ArtifactError
func NewArtifactError(op, name, artifactType string, wrapped error) error {
	return &ArtifactError{
		Op:       op,
		Artifact: name,
		Type:     artifactType,
		Wrapped:  wrapped,
	}
}

// RollbackError indicates that restoring a collection snapshot after a
// failed import did not succeed. It is a distinct, higher-severity class:
// when it occurs the collection on disk may be in an inconsistent state
// and must be inspected by the operator.
type RollbackError struct {
	Collection string
	SnapshotID string
	Wrapped    error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("CRITICAL: rollback of collection %s from snapshot %s failed: %v",
		e.Collection, e.SnapshotID, e.Wrapped)
}

func (e *RollbackError) Unwrap() error {
	return e.Wrapped
}

// NewRollbackError creates a new RollbackError
func NewRollbackError(collection, snapshotID string, wrapped error) error {
	return &RollbackError{
		Collection: collection,
		SnapshotID: snapshotID,
		Wrapped:    wrapped,
	}
}

// IsRollback reports whether err is (or wraps) a RollbackError.
func IsRollback(err error) bool {
	var re *RollbackError
	return errors.As(err, &re)
}

// Is reports whether target matches err.
// It enables errors.Is() to work with our custom error types.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It enables errors.As() to work with our custom error types.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
