package supplement

// Benefit amounts in dollars.
const (
	singleBaseAmount = 60.0
	coupleBaseAmount = 120.0
	perChildAmount   = 20.0
)

// Evaluate applies the winter supplement rules to a Request.
//
// Evaluate is total and deterministic: it never fails and returns the same
// Result for the same Request.
func Evaluate(req Request) Result {
	if !req.InPayForDecember {
		return Result{ID: req.ID}
	}

	base := BaseAmount(req.Composition)
	children := float64(req.NumberOfChildren) * perChildAmount

	return Result{
		ID:               req.ID,
		IsEligible:       true,
		BaseAmount:       base,
		ChildrenAmount:   children,
		SupplementAmount: base + children,
	}
}

// BaseAmount returns the base amount for a household composition.
func BaseAmount(c Composition) float64 {
	switch c {
	case CompositionSingle:
		return singleBaseAmount
	case CompositionCouple:
		return coupleBaseAmount
	default:
		return 0
	}
}
