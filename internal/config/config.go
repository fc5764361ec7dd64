// Package config loads study configuration from YAML with environment
// overrides for endpoints and DSNs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristotle-tek/caracas-signal/internal/align"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// Config holds all study configuration. Thresholds that the source
// hard-coded (significance z, minimum sample sizes, session window) are
// explicit here so they are testable and swappable per study.
type Config struct {
	Session struct {
		Timezone string `yaml:"timezone"` // IANA name, e.g. America/New_York
		Open     string `yaml:"open"`     // HH:MM, inclusive
		Close    string `yaml:"close"`    // HH:MM, inclusive
	} `yaml:"session"`

	Thresholds struct {
		SignificanceZ   float64 `yaml:"significance_z"`
		MinIntradayBars int     `yaml:"min_intraday_bars"`
		MinDailyBars    int     `yaml:"min_daily_bars"`
		MinBarsPerDay   int     `yaml:"min_bars_per_day"`
	} `yaml:"thresholds"`

	ChartBaseURL string `yaml:"chart_base_url"`

	Storage struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`

	Study struct {
		Target    string   `yaml:"target"`    // sector under study, e.g. XLE
		Benchmark string   `yaml:"benchmark"` // market benchmark, e.g. SPY
		Factors   []string `yaml:"factors"`   // factor tickers for the intraday model

		EventDate    string `yaml:"event_date"`    // yyyy-mm-dd
		BoundaryTime string `yaml:"boundary_time"` // HH:MM within the event session

		BaselineStart string `yaml:"baseline_start"` // yyyy-mm-dd
		BaselineEnd   string `yaml:"baseline_end"`   // yyyy-mm-dd, exclusive of event

		Contractors    []string `yaml:"contractors"`     // beta batch vs target sector
		DefenseTicker  string   `yaml:"defense_ticker"`  // hierarchy test
		ShippingBasket []string `yaml:"shipping_basket"` // hierarchy test

		RotationPairs []RotationPair `yaml:"rotation_pairs"` // event-day rotation check
	} `yaml:"study"`

	Events []EventEntry `yaml:"events"` // historical reaction catalog
}

// RotationPair is one sector/benchmark pair for the rotation check.
type RotationPair struct {
	Ticker    string `yaml:"ticker"`
	Benchmark string `yaml:"benchmark"`
}

// EventEntry is one catalog event as written in YAML.
type EventEntry struct {
	Name        string `yaml:"name"`
	Date        string `yaml:"date"` // yyyy-mm-dd
	Description string `yaml:"description"`
}

// Load reads config from a YAML file, applies defaults, then environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()

	// Environment variable overrides
	if v := os.Getenv("CARACAS_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CARACAS_CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("CARACAS_CHART_BASE_URL"); v != "" {
		cfg.ChartBaseURL = v
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Session.Timezone == "" {
		c.Session.Timezone = "America/New_York"
	}
	if c.Session.Open == "" {
		c.Session.Open = "09:30"
	}
	if c.Session.Close == "" {
		c.Session.Close = "16:00"
	}
	if c.Thresholds.SignificanceZ == 0 {
		c.Thresholds.SignificanceZ = 1.96
	}
	if c.Thresholds.MinIntradayBars == 0 {
		c.Thresholds.MinIntradayBars = 100
	}
	if c.Thresholds.MinDailyBars == 0 {
		c.Thresholds.MinDailyBars = 30
	}
	if c.Thresholds.MinBarsPerDay == 0 {
		c.Thresholds.MinBarsPerDay = 30
	}
	if c.ChartBaseURL == "" {
		c.ChartBaseURL = "https://query1.finance.yahoo.com"
	}
}

// Location resolves the session timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Session.Timezone, err)
	}
	return loc, nil
}

// SessionWindow parses the session open/close times.
func (c *Config) SessionWindow() (align.TimeOfDay, align.TimeOfDay, error) {
	open, err := align.ParseTimeOfDay(c.Session.Open)
	if err != nil {
		return align.TimeOfDay{}, align.TimeOfDay{}, err
	}
	sessClose, err := align.ParseTimeOfDay(c.Session.Close)
	if err != nil {
		return align.TimeOfDay{}, align.TimeOfDay{}, err
	}
	return open, sessClose, nil
}

// ParseDate parses a yyyy-mm-dd string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// EventCatalog converts catalog entries to domain events.
func (c *Config) EventCatalog(loc *time.Location) ([]domain.EventSpec, error) {
	out := make([]domain.EventSpec, 0, len(c.Events))
	for _, e := range c.Events {
		d, err := ParseDate(e.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", e.Name, err)
		}
		out = append(out, domain.EventSpec{Name: e.Name, Date: d, Description: e.Description})
	}
	return out, nil
}
