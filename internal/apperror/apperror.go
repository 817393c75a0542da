package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services return AppErrors wrapping one of these;
// the HTTP layer switches on them with errors.Is to pick a status code.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrClosed          = errors.New("submissions closed")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated returns an AppError for requests that need a valid
// identity and don't have one. HTTP handlers map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// CodeTaken reports a join-code collision at the store. The pool service
// treats it as a signal to generate a fresh code and retry, so it should
// not normally reach a client.
func CodeTaken(code string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("pool code %s is already taken", code),
	}
}

// AlreadyMember reports that the (user, pool) membership already exists.
// Returned both by the service pre-check and by the unique-constraint
// remap in the store, so a racing duplicate join surfaces identically.
// Maps to 409.
func AlreadyMember() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "user is already a member of this pool",
	}
}

// DuplicateGuess reports that the participant already guessed this game.
// Same dual pre-check/constraint role as AlreadyMember. Maps to 409.
func DuplicateGuess() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "participant already has a guess for this game",
	}
}

// NotInPool reports a guess attempt by someone who never joined the pool.
// Maps to 403.
func NotInPool() *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: "user is not a member of this pool",
	}
}

// SubmissionClosed reports a guess sent at or after kickoff. Maps to 400,
// matching the original API's behaviour for late guesses.
func SubmissionClosed() *AppError {
	return &AppError{
		Err:     ErrClosed,
		Message: "guesses cannot be submitted after the game has started",
	}
}
