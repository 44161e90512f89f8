package errors

import "fmt"

// IntegrityError is returned when the SHA-256 of an artifact does not match
// the hash pinned in the lockfile.
type IntegrityError struct {
	Expected string
	Actual   string
	Path     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrIntegrity) hold for every IntegrityError.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewIntegrityError creates a new IntegrityError.
func NewIntegrityError(path, expected, actual string) *IntegrityError {
	return &IntegrityError{Expected: expected, Actual: actual, Path: path}
}

// FileOperationError is returned when a filesystem operation fails.
type FileOperationError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileOperationError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileOperationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFilesystem) hold for every FileOperationError.
func (e *FileOperationError) Is(target error) bool {
	return target == ErrFilesystem
}

// NewFileOperationError creates a new FileOperationError.
func NewFileOperationError(op, path string, err error) *FileOperationError {
	return &FileOperationError{Op: op, Path: path, Err: err}
}
