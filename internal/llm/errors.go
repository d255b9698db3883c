package llm

import "errors"

var (
	ErrInvalidCredential = errors.New("llm invalid credential")
	ErrUnauthorized      = errors.New("llm unauthorized")
	ErrProvider          = errors.New("llm provider error")
	ErrRequestFailed     = errors.New("llm request failed")
	ErrEgressBlocked     = errors.New("egress blocked")
)

// Error is a completion failure with a message suitable for showing to the user.
// Kind is one of the sentinels above; Err is the underlying cause, if any.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
