package study

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// Reaction signal classifications for the historical event table.
const (
	SignalWarRisk       = "War Risk (Positive)"
	SignalStabilization = "Stabilization (Negative)"
	SignalDeEscalation  = "De-escalation (Negative)"
	SignalShippingShock = "Pure Shipping Shock"
	SignalMixed         = "Mixed / Noise"
)

// EventReaction is one row of the historical reaction table: how the
// defense ticker and the shipping basket moved on a catalog event day.
type EventReaction struct {
	Event         domain.EventSpec
	DefenseReturn float64 // close-to-close, event day vs prior trading day
	BasketReturn  float64 // average over available basket tickers
	Signal        string
	DataMissing   bool
}

// HistoricalReactions computes the single-day reaction of the defense
// ticker and the shipping basket for each catalog event, classifying the
// pattern. Events with missing data are reported as such, not dropped.
func (r *Runner) HistoricalReactions(ctx context.Context, events []domain.EventSpec, defense string, basket []string) []EventReaction {
	sorted := make([]domain.EventSpec, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]EventReaction, 0, len(sorted))
	for _, ev := range sorted {
		row := EventReaction{Event: ev}

		defRet, ok := r.singleDayReturn(ctx, defense, ev.Date)
		if !ok {
			row.DataMissing = true
			out = append(out, row)
			continue
		}

		var basketSum float64
		var basketN int
		for _, t := range basket {
			if ret, ok := r.singleDayReturn(ctx, t, ev.Date); ok {
				basketSum += ret
				basketN++
			}
		}
		if basketN == 0 {
			row.DataMissing = true
			out = append(out, row)
			continue
		}

		row.DefenseReturn = defRet
		row.BasketReturn = basketSum / float64(basketN)
		row.Signal = classifyReaction(row.DefenseReturn, row.BasketReturn)
		out = append(out, row)
	}
	return out
}

// singleDayReturn computes the close-to-close return of the event day (or
// the first trading day at or after it) versus the prior trading day.
// Fetches a padded window so weekend events resolve to the next session.
func (r *Runner) singleDayReturn(ctx context.Context, ticker string, date time.Time) (float64, bool) {
	start := date.AddDate(0, 0, -5)
	end := date.AddDate(0, 0, 5)

	raw, err := r.Provider.FetchOrLoad(ctx, ticker, start, end, domain.IntervalDaily)
	if err != nil {
		return 0, false
	}
	s := r.Aligner.NormalizeDaily(*raw)

	// First bar at or after the event date.
	idx := -1
	for i, b := range s.Bars {
		if !b.Timestamp.Before(date) {
			idx = i
			break
		}
	}
	if idx <= 0 {
		// Either no bar after the date, or no prior close to compare to.
		return 0, false
	}
	return s.Bars[idx].Close/s.Bars[idx-1].Close - 1, true
}

// classifyReaction labels the defense/shipping pattern. Thresholds are in
// percent: 0.5% for a directional move, 1.0% for a shipping-only shock.
func classifyReaction(defenseReturn, basketReturn float64) string {
	defPct := defenseReturn * 100
	shipPct := basketReturn * 100

	switch {
	case defPct > 0.5 && shipPct > 0.5:
		return SignalWarRisk
	case defPct > 0.5 && shipPct < -0.5:
		return SignalStabilization
	case defPct < -0.5 && shipPct > 0.5:
		return SignalDeEscalation
	case math.Abs(defPct) < 0.5 && math.Abs(shipPct) > 1.0:
		return SignalShippingShock
	default:
		return SignalMixed
	}
}
