package supplement

import (
	"fmt"
	"strings"
)

// Validate checks the fields a Request is required to carry.
//
// The message path only calls Validate when strict validation is enabled;
// by default requests with an empty id or composition are evaluated as-is.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Composition) == "" {
		return fmt.Errorf("%w: composition is required", ErrInvalidRequest)
	}
	return nil
}
