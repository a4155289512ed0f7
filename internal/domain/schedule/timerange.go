package schedule

import (
	"fmt"
	"time"

	"github.com/coachbook/service-scheduling/internal/platform/domain"
)

// TimeRange is a half-open interval [Start, End). Start is always strictly
// before End for ranges built through NewTimeRange.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a validated TimeRange.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, domain.NewError(domain.CodeInvalidTimeRange,
			fmt.Sprintf("start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return TimeRange{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether the two half-open intervals intersect. Touching
// endpoints (r.End == other.Start) do not count as overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Contains reports whether t falls inside [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Snap rounds both endpoints to the nearest granularity boundary, half up.
// Two callers picking nearly identical times converge onto the same canonical
// boundaries, so a genuine conflict cannot be missed by a few seconds of
// drift. Snapping may invalidate a very short range, so the result is
// re-validated.
func (r TimeRange) Snap(granularity time.Duration) (TimeRange, error) {
	return NewTimeRange(r.Start.Round(granularity), r.End.Round(granularity))
}
