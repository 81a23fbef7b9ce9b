package supplement

import "errors"

var (
	// ErrDecode is returned when an inbound payload cannot be parsed into a Request.
	ErrDecode = errors.New("supplement: malformed request payload")

	// ErrInvalidRequest is returned by Request.Validate when a required field is empty.
	ErrInvalidRequest = errors.New("supplement: invalid request")
)
