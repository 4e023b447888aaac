package errs

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNoAvailableCopy = errors.New("no available copy")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyReturned = errors.New("borrow already returned")
	ErrConflict        = errors.New("already exists")
)
