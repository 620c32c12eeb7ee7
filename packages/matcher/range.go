package matcher

const RangeBetweenName = "rangeBetween"

// RangeBetween checks that a numeric subject lies in an inclusive range.
// Args: min, max. The bounds are used as given; a reversed range matches
// nothing.
type RangeBetween struct{}

func (RangeBetween) Name() string { return RangeBetweenName }

func (RangeBetween) Priority() int { return 0 }

// Supports requires exactly two numeric bounds so that other matchers get a
// chance at malformed calls.
func (RangeBetween) Supports(inv Invocation) bool {
	return inv.Name == RangeBetweenName &&
		len(inv.Args) == 2 &&
		IsNumeric(inv.Args[0]) &&
		IsNumeric(inv.Args[1])
}

func (RangeBetween) PositiveMatch(inv Invocation) Result {
	if !inRange(inv.Subject, inv.Args[0], inv.Args[1]) {
		return Fail("the return value %s should be in range %s-%s",
			formatNumeric(inv.Subject), formatNumeric(inv.Args[0]), formatNumeric(inv.Args[1]))
	}
	return Pass()
}

func (RangeBetween) NegativeMatch(inv Invocation) Result {
	if inRange(inv.Subject, inv.Args[0], inv.Args[1]) {
		return Fail("the return value %s should not be in range %s-%s",
			formatNumeric(inv.Subject), formatNumeric(inv.Args[0]), formatNumeric(inv.Args[1]))
	}
	return Pass()
}

// inRange reports lower <= value <= upper. Non-numeric values are never in range.
func inRange(value, lower, upper any) bool {
	v, ok := toNumber(value)
	if !ok {
		return false
	}
	lo, ok := toNumber(lower)
	if !ok {
		return false
	}
	hi, ok := toNumber(upper)
	if !ok {
		return false
	}
	return v.compare(lo) >= 0 && v.compare(hi) <= 0
}
