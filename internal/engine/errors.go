package engine

import "fmt"

type UnknownServiceError struct {
	service string
}

func NewUnknownServiceError(service string) *UnknownServiceError {
	return &UnknownServiceError{service: service}
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("no such service: %s", e.service)
}

func (e *UnknownServiceError) Service() string {
	return e.service
}

// PortConflictError marks a scale attempt on a service that publishes
// host ports.
type PortConflictError struct {
	service string
}

func NewPortConflictError(service string) *PortConflictError {
	return &PortConflictError{service: service}
}

func (e *PortConflictError) Error() string {
	return fmt.Sprintf("cannot scale service %s: it publishes host ports", e.service)
}

func (e *PortConflictError) Service() string {
	return e.service
}
