package tracker

// Manual ordering uses float keys. Inserting between two neighbours takes
// their midpoint; once two keys are too close for a midpoint to exist the
// caller rebalances the whole list.

const orderStep = 1.0

// OrderAfter returns a key placed after last.
func OrderAfter(last float64) float64 {
	return last + orderStep
}

// OrderBetween returns the midpoint of prev and next. ok is false when the
// midpoint is not strictly between them (float precision exhausted).
func OrderBetween(prev, next float64) (float64, bool) {
	mid := prev + (next-prev)/2
	return mid, mid > prev && mid < next
}

// InsertOrder returns a key that sorts at position index of the ascending
// key list orders.
func InsertOrder(orders []float64, index int) (float64, bool) {
	switch {
	case len(orders) == 0:
		return orderStep, true
	case index <= 0:
		return orders[0] - orderStep, true
	case index >= len(orders):
		return OrderAfter(orders[len(orders)-1]), true
	}
	return OrderBetween(orders[index-1], orders[index])
}

// Rebalance returns evenly spaced keys 1..n.
func Rebalance(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * orderStep
	}
	return out
}
