package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
session:
  timezone: UTC
  open: "09:30"
  close: "16:00"

thresholds:
  significance_z: 2.5

storage:
  postgres_dsn: postgres://local/test

study:
  target: XLE
  benchmark: SPY
  factors: [SPY, CL=F]
  event_date: "2026-01-02"
  boundary_time: "14:55"
  baseline_start: "2025-12-01"
  baseline_end: "2026-01-01"
  contractors: [HAL, SLB]
  defense_ticker: ITA
  shipping_basket: [FRO, NAT, STNG]
  rotation_pairs:
    - { ticker: XLF, benchmark: SPY }

events:
  - name: Suez Blockage (2021)
    date: "2021-03-24"
    description: Shipping Logistics Shock
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Study.Target != "XLE" || cfg.Study.Benchmark != "SPY" {
		t.Errorf("study tickers not parsed: %s vs %s", cfg.Study.Target, cfg.Study.Benchmark)
	}
	if len(cfg.Study.Factors) != 2 || cfg.Study.Factors[1] != "CL=F" {
		t.Errorf("factors not parsed: %v", cfg.Study.Factors)
	}
	if cfg.Thresholds.SignificanceZ != 2.5 {
		t.Errorf("expected explicit z 2.5, got %v", cfg.Thresholds.SignificanceZ)
	}
	if len(cfg.Study.RotationPairs) != 1 || cfg.Study.RotationPairs[0].Ticker != "XLF" {
		t.Errorf("rotation pairs not parsed: %v", cfg.Study.RotationPairs)
	}
	if len(cfg.Events) != 1 || cfg.Events[0].Name != "Suez Blockage (2021)" {
		t.Errorf("events not parsed: %v", cfg.Events)
	}
}

func TestLoad_DefaultsOnMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("missing file must yield defaults, got %v", err)
	}

	if cfg.Session.Timezone != "America/New_York" {
		t.Errorf("expected default timezone, got %s", cfg.Session.Timezone)
	}
	if cfg.Thresholds.SignificanceZ != 1.96 {
		t.Errorf("expected default z 1.96, got %v", cfg.Thresholds.SignificanceZ)
	}
	if cfg.Thresholds.MinIntradayBars != 100 || cfg.Thresholds.MinDailyBars != 30 {
		t.Errorf("expected default sample minimums, got %d and %d",
			cfg.Thresholds.MinIntradayBars, cfg.Thresholds.MinDailyBars)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CARACAS_POSTGRES_DSN", "postgres://env/override")
	t.Setenv("CARACAS_CHART_BASE_URL", "http://localhost:9999")

	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.PostgresDSN != "postgres://env/override" {
		t.Errorf("env override not applied: %s", cfg.Storage.PostgresDSN)
	}
	if cfg.ChartBaseURL != "http://localhost:9999" {
		t.Errorf("env override not applied: %s", cfg.ChartBaseURL)
	}
}

func TestSessionWindow(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open, sessClose, err := cfg.SessionWindow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.Hour != 9 || open.Minute != 30 {
		t.Errorf("expected 09:30 open, got %s", open)
	}
	if sessClose.Hour != 16 || sessClose.Minute != 0 {
		t.Errorf("expected 16:00 close, got %s", sessClose)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-02", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", d)
	}

	if _, err := ParseDate("01/02/2026", time.UTC); err == nil {
		t.Error("expected error for wrong format")
	}
}

func TestEventCatalog(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := cfg.EventCatalog(time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Date.Equal(time.Date(2021, 3, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected event date %v", events[0].Date)
	}
}

func TestEventCatalog_BadDate(t *testing.T) {
	cfg := &Config{Events: []EventEntry{{Name: "bad", Date: "not-a-date"}}}
	if _, err := cfg.EventCatalog(time.UTC); err == nil {
		t.Error("expected error for malformed event date")
	}
}
