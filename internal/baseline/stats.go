package baseline

import (
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// MaxNormalizedSpread rebases both sides to their first close of the day
// and returns the maximum of (target - reference) across the session: the
// day's peak decoupling of the pair.
func MaxNormalizedSpread(target, reference domain.PriceSeries) (float64, bool) {
	if target.Len() == 0 || reference.Len() != target.Len() {
		return 0, false
	}
	t0 := target.Bars[0].Close
	r0 := reference.Bars[0].Close
	if t0 == 0 || r0 == 0 {
		return 0, false
	}
	max := target.Bars[0].Close/t0 - reference.Bars[0].Close/r0
	for i := 1; i < target.Len(); i++ {
		spread := target.Bars[i].Close/t0 - reference.Bars[i].Close/r0
		if spread > max {
			max = spread
		}
	}
	return max, true
}

// SessionReturn is the day's close-over-open simple return of the target;
// the reference is ignored.
func SessionReturn(target, _ domain.PriceSeries) (float64, bool) {
	if target.Len() == 0 {
		return 0, false
	}
	open := target.Bars[0].Close
	if open == 0 {
		return 0, false
	}
	return target.Bars[target.Len()-1].Close/open - 1, true
}

// VolumeAt returns a statistic picking the target's volume on the bar at
// the given wall-clock time of day, e.g. the 15:55 bar to test
// market-on-close flow. Days without that bar are excluded.
func VolumeAt(hour, minute int, loc *time.Location) DayStat {
	return func(target, _ domain.PriceSeries) (float64, bool) {
		for _, b := range target.Bars {
			local := b.Timestamp.In(loc)
			if local.Hour() == hour && local.Minute() == minute {
				return float64(b.Volume), true
			}
		}
		return 0, false
	}
}
