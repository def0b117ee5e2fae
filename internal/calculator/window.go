package calculator

// Elapsed returns the accrual window in seconds between a checkpoint and min(now, end).
// It never goes negative, so a checkpoint taken after the end yields zero.
func Elapsed(checkpoint, now, end int64) int64 {
	upper := now
	if end < upper {
		upper = end
	}
	if upper <= checkpoint {
		return 0
	}
	return upper - checkpoint
}
