package core

// -----------------------------------------------------------------------------

// PriceMovementRatio compares the last trade to the opening reference price.
// The +1 keeps a zero opening price from dividing by zero.
func PriceMovementRatio(lastTrade, firstPrice float64) float64 {
	return lastTrade / (firstPrice + 1)
}

// -----------------------------------------------------------------------------

// DailyRange is High - Low. A negative range is passed through as is.
func DailyRange(high, low float64) float64 {
	return high - low
}

// -----------------------------------------------------------------------------

// AdjacentDiffs returns values[i] - values[i-1]. The first element has no
// predecessor, so the result is one shorter than the input.
func AdjacentDiffs(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	return diffs
}
