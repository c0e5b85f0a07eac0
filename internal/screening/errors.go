package screening

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoQuestions is returned by Start when neither the generator nor the fallback produced questions.
	ErrNoQuestions = errors.New("no valid questions generated")
	// ErrNotInProgress is returned by operations that need a running screening.
	ErrNotInProgress = errors.New("screening is not in progress")
	// ErrAlreadyStarted is returned by Start outside of the NotStarted phase.
	ErrAlreadyStarted = errors.New("screening already started")
)

type ValidationKind int

const (
	MissingFields ValidationKind = iota + 1
	InvalidEmail
	InvalidPhone
)

// ValidationError describes why a profile cannot start a screening.
type ValidationError struct {
	Kind   ValidationKind
	Fields []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingFields:
		return fmt.Sprintf("please fill these fields first: %s", strings.Join(e.Fields, ", "))
	case InvalidEmail:
		return "please enter a valid email address"
	case InvalidPhone:
		return "please enter a valid phone number (digits, +, - and spaces allowed)"
	default:
		return "invalid profile"
	}
}
