package utils

import (
	"math"
	"time"
)

// SecondsUntil returns the whole seconds left before deadline, rounded up.
// It returns false once the deadline has passed.
func SecondsUntil(deadline, now time.Time) (int64, bool) {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0, false
	}
	return int64(math.Ceil(left.Seconds())), true
}
