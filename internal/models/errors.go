package models

import "errors"

// Common errors used throughout the tools
var (
	ErrVenueNotFound     = errors.New("venue not found")
	ErrLayoutNotFound    = errors.New("venue layout not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrMalformedMetadata = errors.New("malformed seat metadata")
	ErrMalformedLayout   = errors.New("malformed layout document")
	ErrInvalidInput      = errors.New("invalid input")
)
