package report

import "errors"

var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrInvalidCriteria    = errors.New("invalid criteria")
	ErrUnknownProfile     = errors.New("unknown profile")
	ErrProfileMismatch    = errors.New("batch was normalized with another profile")
)
