package checkin

import "time"

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] conflict.
// With tolerance 0 any shared instant counts, touching endpoints included.
// A positive tolerance only rejects a shared span longer than tolerance.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time, tolerance time.Duration) bool {
	if bEnd.Before(aStart) || bStart.After(aEnd) {
		return false
	}
	if tolerance <= 0 {
		return true
	}

	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return end.Sub(start) > tolerance
}
