package teardown

import (
	"errors"
	"fmt"
)

// ErrConfirmationMismatch is returned when the supplied confirmation does not
// match the required token. No destroy runs after it.
type ErrConfirmationMismatch struct {
	Input string
}

func IsConfirmationMismatchErr(target error) bool {
	var err *ErrConfirmationMismatch
	return errors.As(target, &err)
}

func NewConfirmationMismatchErr(input string) error {
	return &ErrConfirmationMismatch{Input: input}
}

func (e *ErrConfirmationMismatch) Error() string {
	return fmt.Sprintf(
		"confirmation %q does not match the required token %q; nothing was destroyed",
		e.Input,
		ConfirmationToken,
	)
}
