package vault

import (
	"errors"
)

var (
	// ErrNotFound is returned by a MetadataStore when no record exists for an id.
	ErrNotFound = errors.New("object not found")
	// ErrCorruptRecord is returned when a record exists but cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt object record")

	// ErrUnavailable is the single caller-visible failure for every
	// unavailability reason. The reason itself stays internal.
	ErrUnavailable = errors.New("object unavailable")
	// ErrPasswordRequired signals that the caller should prompt for a
	// password without consuming any lifetime budget.
	ErrPasswordRequired = errors.New("password required")

	ErrNoFile       = errors.New("no file provided")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrEmptyName    = errors.New("missing or reserved filename")
)
