package account

import (
	"errors"
	"fmt"
)

// Errors returned by the account manager.
var (
	// ErrDecode indicates the account database could not be read or parsed.
	ErrDecode = errors.New("invalid account database")

	// ErrConflict indicates an add collided with an existing account.
	ErrConflict = errors.New("account already exists")
)

// DecodeError describes a database file that is missing, unreadable, or not
// a JSON array of objects.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decoding account database: %v", e.Err)
	}
	return fmt.Sprintf("decoding account database %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ConflictError carries the existing account that blocked an add.
type ConflictError struct {
	User string
	Port int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("user [%s] port [%d] already exist", e.User, e.Port)
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// IsDecode returns true if err reports an unreadable database.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsConflict returns true if err reports a duplicate user or port.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
