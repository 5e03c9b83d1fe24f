package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExists      = errors.New("session token already exists")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrGateway            = errors.New("validation gateway error")
)

// InputError is a missing or malformed required field. Its message is safe to
// show to end users as-is.
type InputError struct {
	Msg string
}

// NewInputError returns an InputError carrying msg.
func NewInputError(msg string) *InputError {
	return &InputError{Msg: msg}
}

func (e *InputError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// GatewayError carries the first error message reported by the validation
// engine. StatusCode is the upstream HTTP status, or 0 on transport failure.
type GatewayError struct {
	StatusCode int
	Msg        string
}

func (e *GatewayError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrGateway) match any GatewayError.
func (e *GatewayError) Is(target error) bool { return target == ErrGateway }
