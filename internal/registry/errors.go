package registry

import (
	"errors"
	"fmt"
)

// ValidationReason describes why a participant name was rejected
type ValidationReason int

const (
	EmptyName ValidationReason = iota + 1
	TooShort
)

func (r ValidationReason) String() string {
	switch r {
	case EmptyName:
		return "empty name"
	case TooShort:
		return "name too short"
	default:
		return "invalid name"
	}
}

// ValidationError is returned by BeginSession for unusable names
type ValidationError struct {
	Reason    ValidationReason
	MinLength int
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case EmptyName:
		return "please enter your name to continue"
	case TooShort:
		return fmt.Sprintf("name must be at least %d characters long", e.MinLength)
	default:
		return e.Reason.String()
	}
}

// Selection errors
var (
	ErrAlreadySelected = errors.New("participant has already selected an option")
	ErrOptionFull      = errors.New("option has reached capacity")
	ErrUnknownOption   = errors.New("unknown option")
	ErrNoSession       = errors.New("no active session")
)

// IsValidation reports whether err is a name validation failure
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
