package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/align"
	"github.com/aristotle-tek/caracas-signal/internal/config"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/provider"
	"github.com/aristotle-tek/caracas-signal/internal/reporting"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
	chstore "github.com/aristotle-tek/caracas-signal/internal/storage/clickhouse"
	"github.com/aristotle-tek/caracas-signal/internal/storage/memory"
	pgstore "github.com/aristotle-tek/caracas-signal/internal/storage/postgres"
	"github.com/aristotle-tek/caracas-signal/internal/study"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yml", "Path to YAML config")
	outputPath := flag.String("output", "", "Markdown report path (default: stdout)")
	csvDir := flag.String("csv-dir", "", "Directory for CSV exports (optional)")
	volumeBar := flag.String("volume-bar", "15:55", "Session bar for the volume spike placebo (HH:MM)")
	betaHistoryDays := flag.Int("beta-history-days", 365, "Daily history length for beta fits")

	// Storage
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (fetch everything, persist nothing)")
	persistResults := flag.Bool("persist", false, "Persist beta results to PostgreSQL")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[study] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.Study.Target == "" || cfg.Study.Benchmark == "" {
		logger.Fatal("config study.target and study.benchmark are required")
	}
	if cfg.Study.EventDate == "" {
		logger.Fatal("config study.event_date is required")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("resolve timezone: %v", err)
	}
	open, sessClose, err := cfg.SessionWindow()
	if err != nil {
		logger.Fatalf("parse session window: %v", err)
	}

	eventDate, err := config.ParseDate(cfg.Study.EventDate, loc)
	if err != nil {
		logger.Fatalf("parse event date: %v", err)
	}
	baselineStart, err := config.ParseDate(cfg.Study.BaselineStart, loc)
	if err != nil {
		logger.Fatalf("parse baseline start: %v", err)
	}
	baselineEnd, err := config.ParseDate(cfg.Study.BaselineEnd, loc)
	if err != nil {
		logger.Fatalf("parse baseline end: %v", err)
	}

	var boundary time.Time
	if cfg.Study.BoundaryTime != "" {
		tod, err := align.ParseTimeOfDay(cfg.Study.BoundaryTime)
		if err != nil {
			logger.Fatalf("parse boundary time: %v", err)
		}
		boundary = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), tod.Hour, tod.Minute, 0, 0, loc)
	}
	volumeTod, err := align.ParseTimeOfDay(*volumeBar)
	if err != nil {
		logger.Fatalf("parse --volume-bar: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores. Intraday bars live in ClickHouse, daily bars and beta
	// results in PostgreSQL; in-memory stands in for both.
	var intradayStore storage.BarStore = memory.NewBarStore()
	var dailyStore storage.BarStore = memory.NewBarStore()
	var resultStore storage.EventResultStore = memory.NewEventResultStore()

	if !*useMemory {
		if cfg.Storage.ClickhouseDSN != "" {
			conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
			if err != nil {
				logger.Fatalf("connect to clickhouse: %v", err)
			}
			defer conn.Close()
			intradayStore = chstore.NewBarStore(conn)
		}
		if cfg.Storage.PostgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			dailyStore = pgstore.NewBarStore(pool)
			resultStore = pgstore.NewEventResultStore(pool)
		}
	}

	client := provider.NewChartClient(cfg.ChartBaseURL)
	prov := intervalRouter{
		intraday: provider.NewCachedProvider(intradayStore, client),
		daily:    provider.NewCachedProvider(dailyStore, client),
	}

	aligner := align.New(loc, open, sessClose)
	runner := &study.Runner{
		Provider:        prov,
		Aligner:         aligner,
		MinIntradayBars: cfg.Thresholds.MinIntradayBars,
		MinDailyBars:    cfg.Thresholds.MinDailyBars,
		MinBarsPerDay:   cfg.Thresholds.MinBarsPerDay,
		SignificanceZ:   cfg.Thresholds.SignificanceZ,
	}

	report := &reporting.Report{
		GeneratedAt: time.Now(),
		EventName:   fmt.Sprintf("%s vs %s", cfg.Study.Target, cfg.Study.Benchmark),
		EventDate:   eventDate,
	}

	// Intraday decoupling
	report.Leak, err = runner.LeakReport(ctx, cfg.Study.Target, cfg.Study.Benchmark, eventDate)
	if err != nil {
		logger.Printf("leak report: %v", err)
	} else {
		logger.Printf("leak report: max spread %.4f%% at %s",
			report.Leak.MaxSpread*100, report.Leak.MaxSpreadTime.Format("15:04"))
	}

	// Factor model CAR
	report.Factor, err = runner.FactorCAR(ctx, cfg.Study.Target, cfg.Study.Factors, baselineStart, eventDate, boundary)
	if err != nil {
		logger.Printf("factor car: %v", err)
	} else if report.Factor.Event != nil {
		logger.Printf("factor car: CAR %.4f%% over %d bars, z=%.2f",
			report.Factor.Event.CAR*100, report.Factor.Event.Bars, report.Factor.Event.ZScore)
	}

	// Beta batches: contractors follow the target sector, defense and
	// shipping follow the market benchmark.
	historyStart := eventDate.AddDate(0, 0, -*betaHistoryDays)
	report.Betas = runner.BetaBatch(ctx, cfg.Study.Contractors, cfg.Study.Target, eventDate, historyStart)

	hierarchy := append([]string{}, cfg.Study.ShippingBasket...)
	if cfg.Study.DefenseTicker != "" {
		hierarchy = append([]string{cfg.Study.DefenseTicker}, hierarchy...)
	}
	report.Betas = append(report.Betas, runner.BetaBatch(ctx, hierarchy, cfg.Study.Benchmark, eventDate, historyStart)...)

	for _, o := range report.Betas {
		switch {
		case o.Result != nil:
			logger.Printf("beta %s vs %s: abnormal %.4f%% (z=%.2f)",
				o.Result.Ticker, o.Result.Benchmark, o.Result.AbnormalReturn*100, o.Result.ZScore)
		case o.Skipped():
			logger.Printf("beta %s: skipped (%s)", o.Ticker, o.SkipReason)
		default:
			logger.Printf("beta %s: %v", o.Ticker, o.Err)
		}
	}

	// Placebo distributions
	if spread, err := runner.SpreadPlacebo(ctx, cfg.Study.Target, cfg.Study.Benchmark, baselineStart, baselineEnd, eventDate); err != nil {
		logger.Printf("spread placebo: %v", err)
	} else {
		report.Placebos = append(report.Placebos, spread)
	}
	if vol, err := runner.VolumeSpike(ctx, cfg.Study.Target, volumeTod, baselineStart, baselineEnd, eventDate); err != nil {
		logger.Printf("volume spike: %v", err)
	} else {
		report.Placebos = append(report.Placebos, vol)
	}

	// Sector rotation
	if len(cfg.Study.RotationPairs) > 0 {
		pairs := make([][2]string, 0, len(cfg.Study.RotationPairs))
		for _, p := range cfg.Study.RotationPairs {
			pairs = append(pairs, [2]string{p.Ticker, p.Benchmark})
		}
		report.Rotation = runner.RotationCheck(ctx, pairs, eventDate)
	}

	// Historical reactions
	if len(cfg.Events) > 0 && cfg.Study.DefenseTicker != "" {
		catalog, err := cfg.EventCatalog(loc)
		if err != nil {
			logger.Fatalf("event catalog: %v", err)
		}
		report.Historical = runner.HistoricalReactions(ctx, catalog, cfg.Study.DefenseTicker, cfg.Study.ShippingBasket)
	}

	// Persist beta results
	if *persistResults {
		var stored int
		for _, o := range report.Betas {
			if o.Result == nil {
				continue
			}
			if err := resultStore.Insert(ctx, o.Result); err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					continue
				}
				logger.Printf("persist %s: %v", o.Ticker, err)
				continue
			}
			stored++
		}
		logger.Printf("Persisted %d beta results", stored)
	}

	// Render
	md := reporting.RenderMarkdown(report)
	if *outputPath == "" {
		fmt.Print(md)
	} else if err := os.WriteFile(*outputPath, []byte(md), 0o644); err != nil {
		logger.Fatalf("write report: %v", err)
	} else {
		logger.Printf("Report written to %s", *outputPath)
	}

	if *csvDir != "" {
		if err := os.MkdirAll(*csvDir, 0o755); err != nil {
			logger.Fatalf("create csv dir: %v", err)
		}
		if len(report.Betas) > 0 {
			path := filepath.Join(*csvDir, "betas.csv")
			if err := os.WriteFile(path, []byte(reporting.RenderBetaCSV(report.Betas)), 0o644); err != nil {
				logger.Fatalf("write %s: %v", path, err)
			}
		}
		if report.Leak != nil {
			path := filepath.Join(*csvDir, "spread.csv")
			if err := os.WriteFile(path, []byte(reporting.RenderSpreadCSV(report.Leak)), 0o644); err != nil {
				logger.Fatalf("write %s: %v", path, err)
			}
		}
	}
}

// intervalRouter sends intraday requests to one cached provider and daily
// requests to another, so each interval lands in its own store.
type intervalRouter struct {
	intraday provider.Provider
	daily    provider.Provider
}

var _ provider.Provider = intervalRouter{}

func (p intervalRouter) FetchOrLoad(ctx context.Context, ticker string, start, end time.Time, interval string) (*domain.PriceSeries, error) {
	if interval == domain.IntervalDaily {
		return p.daily.FetchOrLoad(ctx, ticker, start, end, interval)
	}
	return p.intraday.FetchOrLoad(ctx, ticker, start, end, interval)
}
