package dispatch

import "fmt"

// InvalidScaleValueError marks a scale request whose desired count for
// one service is not a non-negative integer.
type InvalidScaleValueError struct {
	service string
	value   string
}

func NewInvalidScaleValueError(service, value string) *InvalidScaleValueError {
	return &InvalidScaleValueError{service: service, value: value}
}

func (e *InvalidScaleValueError) Error() string {
	return fmt.Sprintf("invalid scale value %q for service %s: expected a non-negative integer", e.value, e.service)
}

func (e *InvalidScaleValueError) Service() string {
	return e.service
}
