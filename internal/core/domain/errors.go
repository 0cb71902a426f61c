package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrTemporary     = errors.New("temporary failure")
	ErrPrecondition  = errors.New("analysis precondition failed")
	ErrNothingToDo   = errors.New("all tags have already been analyzed and are up to date")
	ErrConflict      = errors.New("analysis already in progress")
	ErrConfiguration = errors.New("invalid provider configuration")
	ErrProvider      = errors.New("no content returned from the API, please double-check your configuration")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
