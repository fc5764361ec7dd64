package idhash

import (
	"testing"
	"time"
)

func TestComputeResultID_Deterministic(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	id1 := ComputeResultID("HAL", "XLE", date)
	id2 := ComputeResultID("HAL", "XLE", date)

	if id1 != id2 {
		t.Errorf("expected deterministic ID, got %s and %s", id1, id2)
	}
	if len(id1) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(id1))
	}
}

func TestComputeResultID_DiffersPerField(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	base := ComputeResultID("HAL", "XLE", date)

	if ComputeResultID("SLB", "XLE", date) == base {
		t.Error("expected different ID for different ticker")
	}
	if ComputeResultID("HAL", "SPY", date) == base {
		t.Error("expected different ID for different benchmark")
	}
	if ComputeResultID("HAL", "XLE", date.AddDate(0, 0, 1)) == base {
		t.Error("expected different ID for different event date")
	}
}

func TestComputeResultID_NormalizesTimezone(t *testing.T) {
	utc := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	// Same UTC calendar date expressed in another zone.
	est := time.FixedZone("EST", -5*3600)
	shifted := time.Date(2026, 1, 1, 20, 0, 0, 0, est)

	if ComputeResultID("HAL", "XLE", utc) != ComputeResultID("HAL", "XLE", shifted) {
		t.Error("expected timezone-normalized IDs to match")
	}
}
