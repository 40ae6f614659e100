package runner

import "fmt"

// DependencyMissingError marks an unreachable container runtime. It is
// fatal: the requested operation is never attempted.
type DependencyMissingError struct {
	cause error
}

func NewDependencyMissingError(cause error) *DependencyMissingError {
	return &DependencyMissingError{cause: cause}
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("container runtime unavailable: %v", e.cause)
}

func (e *DependencyMissingError) Unwrap() error {
	return e.cause
}
