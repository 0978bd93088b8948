package evallog

import "errors"

var (
	ErrMissingSection  = errors.New("evallog: missing required section")
	ErrMalformedRow    = errors.New("evallog: malformed spectral-data row")
	ErrColumnMismatch  = errors.New("evallog: header/row column count mismatch")
	ErrUnknownTimeForm = errors.New("evallog: unrecognized time format")
)
