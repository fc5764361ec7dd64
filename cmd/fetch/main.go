package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/config"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/provider"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
	chstore "github.com/aristotle-tek/caracas-signal/internal/storage/clickhouse"
	"github.com/aristotle-tek/caracas-signal/internal/storage/memory"
	pgstore "github.com/aristotle-tek/caracas-signal/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yml", "Path to YAML config")
	tickers := flag.String("tickers", "", "Comma-separated tickers (default: all study tickers)")
	interval := flag.String("interval", domain.Interval5Min, "Bar interval: 5m or 1d")
	startStr := flag.String("start", "", "Range start, yyyy-mm-dd (required)")
	endStr := flag.String("end", "", "Range end, yyyy-mm-dd (required)")
	forceRefresh := flag.Bool("force-refresh", false, "Fetch even when the cache has rows")

	// Storage
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (fetch without persisting)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags)
	began := time.Now()

	if *startStr == "" || *endStr == "" {
		logger.Fatal("--start and --end are required")
	}
	if *interval != domain.Interval5Min && *interval != domain.IntervalDaily {
		logger.Fatalf("Invalid interval: %s. Must be %s or %s", *interval, domain.Interval5Min, domain.IntervalDaily)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("resolve timezone: %v", err)
	}

	start, err := config.ParseDate(*startStr, loc)
	if err != nil {
		logger.Fatalf("parse --start: %v", err)
	}
	end, err := config.ParseDate(*endStr, loc)
	if err != nil {
		logger.Fatalf("parse --end: %v", err)
	}
	// Inclusive end date.
	end = end.AddDate(0, 0, 1)

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

	// Create bar store: intraday bars go to ClickHouse, daily bars to
	// PostgreSQL, matching the store each interval is read from later.
	var barStore storage.BarStore = memory.NewBarStore()

	if !*useMemory {
		switch *interval {
		case domain.Interval5Min:
			if cfg.Storage.ClickhouseDSN == "" {
				logger.Fatal("clickhouse DSN is required for 5m bars (config storage.clickhouse_dsn or CARACAS_CLICKHOUSE_DSN)")
			}
			conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
			if err != nil {
				logger.Fatalf("connect to clickhouse: %v", err)
			}
			defer conn.Close()
			barStore = chstore.NewBarStore(conn)
		case domain.IntervalDaily:
			if cfg.Storage.PostgresDSN == "" {
				logger.Fatal("postgres DSN is required for 1d bars (config storage.postgres_dsn or CARACAS_POSTGRES_DSN)")
			}
			pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			barStore = pgstore.NewBarStore(pool)
		}
	}

	client := provider.NewChartClient(cfg.ChartBaseURL)
	prov := provider.NewCachedProvider(barStore, client)
	prov.ForceRefresh = *forceRefresh

	list := studyTickers(cfg)
	if *tickers != "" {
		list = strings.Split(*tickers, ",")
	}

	var failed int
	for _, ticker := range list {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		series, err := prov.FetchOrLoad(ctx, ticker, start, end, *interval)
		if err != nil {
			logger.Printf("FAIL %s: %v", ticker, err)
			failed++
			continue
		}
		logger.Printf("OK %s: %d bars [%s]", ticker, series.Len(), *interval)
	}

	if failed > 0 {
		logger.Fatalf("%d of %d tickers failed", failed, len(list))
	}
	logger.Printf("Fetched %d tickers in %s", len(list), time.Since(began).Truncate(time.Second))
}

// studyTickers collects every ticker the configured study touches, deduped
// in first-seen order.
func studyTickers(cfg *config.Config) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	add(cfg.Study.Target)
	add(cfg.Study.Benchmark)
	for _, t := range cfg.Study.Factors {
		add(t)
	}
	for _, t := range cfg.Study.Contractors {
		add(t)
	}
	add(cfg.Study.DefenseTicker)
	for _, t := range cfg.Study.ShippingBasket {
		add(t)
	}
	for _, p := range cfg.Study.RotationPairs {
		add(p.Ticker)
		add(p.Benchmark)
	}
	return out
}
