// Package supplement calculates the winter supplement for one household.
//
// A Request arrives as a JSON payload on the broker, is decoded, evaluated
// against the fixed benefit rules, and the Result is encoded back to JSON
// for publication.
//
//	req, err := supplement.Decode(payload)
//	if err != nil {
//	    // errors.Is(err, supplement.ErrDecode)
//	}
//	body, err := supplement.Encode(supplement.Evaluate(req))
//
// # Rules
//
//   - Households not in pay for December are ineligible; every amount is zero.
//   - The base amount is 60 for "single", 120 for "couple", 0 for anything else.
//   - Each child adds 20.
//   - The supplement is the base amount plus the children amount.
//
// # Thread Safety
//
// The package holds no state. Every function is safe for concurrent use.
package supplement
