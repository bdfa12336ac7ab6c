package mastery

import (
	"math"
	"time"
)

// ClampQuality forces q into [0, MaxQuality].
func ClampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// Update computes the next record and due date from prev after a review
// of the given quality, SM-2 style. It has no side effects.
//
// Quality below PassQuality resets the interval and review count. On
// success the interval goes 1, 6, then grows by the previous easiness,
// rounded half to even and capped at MaxInterval.
// Easiness is adjusted on every review. Strength is derived from the
// quality and the review count the record carried into this review.
func Update(prev Record, quality int, now time.Time) (Record, time.Time) {
	q := ClampQuality(quality)
	if prev.Easiness == 0 {
		prev.Easiness = DefaultEasiness
	}
	prev.Easiness = math.Max(MinEasiness, prev.Easiness)
	prev.Interval = max(1, min(prev.Interval, MaxInterval))
	if prev.Reviews < 0 {
		prev.Reviews = 0
	}

	next := prev
	if q < PassQuality {
		next.Interval = 1
		next.Reviews = 0
	} else {
		switch prev.Reviews {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			grown := math.Min(float64(prev.Interval)*prev.Easiness, MaxInterval)
			next.Interval = int(math.RoundToEven(grown))
		}
		if next.Interval < 1 {
			next.Interval = 1
		}
		next.Reviews = prev.Reviews + 1
	}

	miss := float64(MaxQuality - q)
	next.Easiness = math.Max(MinEasiness, prev.Easiness+0.1-miss*(0.08+miss*0.02))

	next.Strength = math.Min(1.0, float64(q)/MaxQuality*(0.5+float64(min(prev.Reviews, 10))/20.0))

	practiced := now.UTC()
	due := practiced.AddDate(0, 0, next.Interval)
	next.LastPracticed = &practiced
	next.NextDue = &due
	return next, due
}
