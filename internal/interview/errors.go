package interview

import "fmt"

// ModelInvocationError reports a failed model call of one persona. The turn
// that hit it is abandoned; nothing is retried.
type ModelInvocationError struct {
	Persona string
	Err     error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s model call failed: %v", e.Persona, e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}
