package supplement

// Composition is the household-type tag that selects the base amount.
type Composition = string

// Recognised household compositions. Matching is exact and case-sensitive.
const (
	CompositionSingle Composition = "single"
	CompositionCouple Composition = "couple"
)

// Request is one household submitted for evaluation.
//
// A Request is a value; Evaluate never modifies it.
type Request struct {
	// ID is echoed unchanged into the Result.
	ID string `json:"id"`

	// NumberOfChildren is the count of dependent children.
	NumberOfChildren uint `json:"numberOfChildren"`

	// Composition is the household type. Unrecognised values are valid
	// input and yield a zero base amount.
	Composition Composition `json:"composition"`

	// InPayForDecember is the eligibility flag.
	InPayForDecember bool `json:"inPayForDecember"`
}

// Result is the calculated supplement for one Request.
//
// SupplementAmount always equals BaseAmount + ChildrenAmount, and every
// amount is zero when IsEligible is false.
type Result struct {
	ID               string  `json:"id"`
	IsEligible       bool    `json:"isEligible"`
	BaseAmount       float64 `json:"baseAmount"`
	ChildrenAmount   float64 `json:"childrenAmount"`
	SupplementAmount float64 `json:"supplementAmount"`
}
