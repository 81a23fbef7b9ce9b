package supplement

import (
	"encoding/json"
	"fmt"
)

// wireRequest mirrors the inbound payload. Pointer fields distinguish an
// absent field from a zero value so the short and long spellings can be
// merged. Field matching is case-insensitive.
type wireRequest struct {
	ID               *string `json:"id"`
	NumOfChildren    *uint   `json:"numOfChildren"`
	NumberOfChildren *uint   `json:"numberOfChildren"`
	Composition      *string `json:"composition"`
	InPayForDec      *bool   `json:"inPayForDec"`
	InPayForDecember *bool   `json:"inPayForDecember"`
}

// Decode parses a request payload.
//
// Unknown fields are ignored and absent fields take their zero value. The
// payload must be a single JSON object: empty, null, truncated, or
// wrongly-typed input fails with ErrDecode and no partial Request.
func Decode(payload []byte) (Request, error) {
	var w *wireRequest
	if err := json.Unmarshal(payload, &w); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if w == nil {
		return Request{}, fmt.Errorf("%w: payload is null", ErrDecode)
	}

	var req Request
	if w.ID != nil {
		req.ID = *w.ID
	}
	if w.Composition != nil {
		req.Composition = *w.Composition
	}

	switch {
	case w.NumberOfChildren != nil:
		req.NumberOfChildren = *w.NumberOfChildren
	case w.NumOfChildren != nil:
		req.NumberOfChildren = *w.NumOfChildren
	}

	switch {
	case w.InPayForDecember != nil:
		req.InPayForDecember = *w.InPayForDecember
	case w.InPayForDec != nil:
		req.InPayForDecember = *w.InPayForDec
	}

	return req, nil
}

// Encode serialises a Result as a JSON object with camelCase field names.
func Encode(res Result) ([]byte, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result %q: %w", res.ID, err)
	}
	return body, nil
}
