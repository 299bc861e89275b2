package domain

import "errors"

var (
	// ErrDataUnavailable is returned when the data file can't be read
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedDocument is returned when the feed document is not well-formed XML
	ErrMalformedDocument = errors.New("malformed document")
)
