// Package timerange implements the half-open time interval used by the
// booking workflow. The Overlaps predicate must stay consistent with the
// database exclusion constraint, which indexes bookings on
// tstzrange(start_time, end_time, '[)').
package timerange

import (
	"fmt"
	"time"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range and validates that Start is strictly before End.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the start-before-end precondition.
func (r Range) Validate() error {
	if !r.Start.Before(r.End) {
		return fmt.Errorf("invalid range: start %s is not before end %s",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect:
// a.Start < b.End && b.Start < a.End. Touching endpoints do not overlap.
// Both ranges must satisfy Start < End; Validate is the caller's job.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls inside the interval. The start instant
// is included, the end instant is not.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
