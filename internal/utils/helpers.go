package utils

// ClampRate guards rate computation against zero elapsed time and counter
// resets: if elapsed is zero or the counter went backwards (reset or
// wraparound), the rate for the cycle is 0 rather than negative or infinite.
func ClampRate(current, previous uint64, elapsedSecs float64) float64 {
	if elapsedSecs <= 0 || current < previous {
		return 0
	}
	return float64(current-previous) / elapsedSecs
}
