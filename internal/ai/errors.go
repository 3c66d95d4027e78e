package ai

import "fmt"

// GenerationError is returned by every Generator implementation.
type GenerationError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
