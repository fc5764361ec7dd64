package reporting

import (
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/study"
)

// Report is the assembled forensic study output.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	EventName   string
	EventDate   time.Time

	// Intraday decoupling (target vs reference pair, bar by bar)
	Leak *study.LeakReport

	// Factor model fit and scored event window
	Factor *study.FactorReport

	// Per-ticker beta outcomes (contractors, defense, shipping)
	Betas []study.TickerOutcome

	// Placebo distributions (spread, volume spike)
	Placebos []*study.PlaceboResult

	// Event-day sector rotation spreads
	Rotation []study.RotationSpread

	// Historical reaction table over the event catalog
	Historical []study.EventReaction
}
