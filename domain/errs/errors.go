package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services wrap these with context via Wrap* helpers and
// callers classify with errors.Is, so the unit-of-work boundary can roll back
// and surface the kind unchanged.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
)

// NotFound wraps ErrNotFound with a description of the missing entity.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// InvalidStatef wraps ErrInvalidState with a formatted description.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// InsufficientFunds reports that a wallet cannot cover an amount.
func InsufficientFunds(available, needed int64) error {
	return fmt.Errorf("have %d available, need %d: %w", available, needed, ErrInsufficientFunds)
}

// Validationf wraps ErrValidation with a formatted description.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Forbiddenf wraps ErrForbidden with a formatted description.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidState reports whether err is (or wraps) ErrInvalidState.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsInsufficientFunds reports whether err is (or wraps) ErrInsufficientFunds.
func IsInsufficientFunds(err error) bool { return errors.Is(err, ErrInsufficientFunds) }

// IsValidation reports whether err is (or wraps) ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsForbidden reports whether err is (or wraps) ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
