package core

// -----------------------------------------------------------------------------

// CountMoves counts strictly positive and strictly negative changes.
func CountMoves(changes []float64) (gainers, losers int) {
	for _, c := range changes {
		if c > 0 {
			gainers++
		} else if c < 0 {
			losers++
		}
	}
	return gainers, losers
}

// -----------------------------------------------------------------------------

// BreadthRatio is gainers / (losers + 1). The +1 is a smoothing constant.
func BreadthRatio(gainers, losers int) float64 {
	return float64(gainers) / float64(losers+1)
}

// -----------------------------------------------------------------------------

// AdjacentBreadth compares each close to the previous row in table order.
func AdjacentBreadth(closes []float64) (gainers, losers int, ratio float64) {
	gainers, losers = CountMoves(AdjacentDiffs(closes))
	return gainers, losers, BreadthRatio(gainers, losers)
}

// -----------------------------------------------------------------------------

// SessionBreadth compares each close to its own previous session close.
func SessionBreadth(closes, previous []float64) (gainers, losers int, ratio float64) {
	n := len(closes)
	if len(previous) < n {
		n = len(previous)
	}
	changes := make([]float64, n)
	for i := 0; i < n; i++ {
		changes[i] = closes[i] - previous[i]
	}
	gainers, losers = CountMoves(changes)
	return gainers, losers, BreadthRatio(gainers, losers)
}
