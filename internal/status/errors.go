package status

import "fmt"

type UnknownUnitError struct {
	unit string
}

func NewUnknownUnitError(unit string) *UnknownUnitError {
	return &UnknownUnitError{unit: unit}
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown duration unit %q", e.unit)
}

func (e *UnknownUnitError) Unit() string {
	return e.unit
}

type MalformedStatusError struct {
	text string
}

func NewMalformedStatusError(text string) *MalformedStatusError {
	return &MalformedStatusError{text: text}
}

func (e *MalformedStatusError) Error() string {
	return fmt.Sprintf("status %q carries no duration", e.text)
}
