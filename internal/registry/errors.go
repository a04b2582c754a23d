package registry

import "errors"

var (
	// ErrNoEntries indicates a hub scan found nothing to register.
	ErrNoEntries = errors.New("no entries found")

	// ErrUnknownKind indicates an unrecognised entry category.
	ErrUnknownKind = errors.New("unknown entry kind")
)
