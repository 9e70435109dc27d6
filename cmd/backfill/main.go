// Command backfill reconciles stored bar history against a requested window,
// fetching whatever is missing from the configured providers.
//
// Usage:
//
//	backfill -config configs/backfill.yaml \
//	    -instruments "1:AAPL:XNYS,2:MSFT:XNAS" \
//	    -cadence 1d -period 10year
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tradehouse/bardata/internal/calendar"
	"github.com/tradehouse/bardata/internal/config"
	"github.com/tradehouse/bardata/internal/database"
	"github.com/tradehouse/bardata/internal/model"
	"github.com/tradehouse/bardata/internal/orchestrator"
	"github.com/tradehouse/bardata/internal/partition"
	"github.com/tradehouse/bardata/internal/provider"
	"github.com/tradehouse/bardata/internal/store"
	"github.com/tradehouse/bardata/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/backfill.yaml", "path to config file")
	instrumentsArg := flag.String("instruments", "", "instruments as id:symbol[:exchange], comma separated")
	cadenceArg := flag.String("cadence", "1d", "bar cadence (1min, 5min, 15min, 1h, 4h, 1d, 1w, 1mo)")
	startArg := flag.String("start", "", "window start (RFC3339 or YYYY-MM-DD)")
	endArg := flag.String("end", "", "window end (RFC3339 or YYYY-MM-DD)")
	periodArg := flag.String("period", "", "trailing period ending now (e.g. 30day, 10year, ytd); overrides -start/-end")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting backfill",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"updater", cfg.Instance.Updater,
		"providers", strings.Join(cfg.Providers.Order, ","),
	)

	instruments, err := parseInstruments(*instrumentsArg)
	if err != nil {
		logger.Error("invalid -instruments", "error", err)
		os.Exit(1)
	}
	cadence, err := model.ParseCadence(*cadenceArg)
	if err != nil {
		logger.Error("invalid -cadence", "error", err)
		os.Exit(1)
	}
	requested, err := resolveWindow(*startArg, *endArg, *periodArg, time.Now())
	if err != nil {
		logger.Error("invalid window", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	ensurer := partition.NewEnsurer(pool, logger)
	if err := ensurer.EnsureParents(ctx); err != nil {
		logger.Error("failed to create parent tables", "error", err)
		os.Exit(1)
	}

	providers, err := buildProviders(cfg.Providers)
	if err != nil {
		logger.Error("failed to build providers", "error", err)
		os.Exit(1)
	}

	barStore := store.NewPostgresStore(pool, ensurer, logger)
	reconciler := orchestrator.New(barStore, providers, calendars(cadence), logger, cfg.Instance.Updater)

	opts := orchestrator.Options{
		SessionOnly: cfg.Reconcile.SessionOnly,
		Concurrency: cfg.Reconcile.Concurrency,
	}
	if cfg.Reconcile.Deadline > 0 {
		opts.Deadline = time.Now().Add(cfg.Reconcile.Deadline)
	}

	logger.Info("reconciling",
		"instruments", len(instruments),
		"cadence", cadence.String(),
		"range", requested.String(),
	)

	results := reconciler.ReconcileAll(ctx, instruments, cadence, requested, opts)

	failed := 0
	for _, ir := range results {
		switch {
		case ir.Err != nil:
			failed++
			logger.Error("instrument failed",
				"symbol", ir.Instrument.Symbol,
				"error", ir.Err,
			)
		case !ir.Result.Satisfied():
			logger.Warn("instrument incomplete",
				"symbol", ir.Instrument.Symbol,
				"written", ir.Result.Written,
				"missing", len(ir.Result.Missing),
				"sources", strings.Join(ir.Result.Sources, ","),
			)
		default:
			logger.Info("instrument complete",
				"symbol", ir.Instrument.Symbol,
				"bars", len(ir.Result.Bars),
				"written", ir.Result.Written,
				"dropped", ir.Result.Dropped,
				"sources", strings.Join(ir.Result.Sources, ","),
			)
		}
	}

	logger.Info("backfill finished",
		"instruments", len(results),
		"failed", failed,
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseInstruments parses "id:symbol[:exchange]" entries.
func parseInstruments(s string) ([]model.Instrument, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("at least one instrument is required")
	}
	var out []model.Instrument
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("malformed instrument %q, want id:symbol[:exchange]", entry)
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("instrument id %q: %w", parts[0], err)
		}
		inst := model.Instrument{ID: id, Symbol: parts[1]}
		if len(parts) == 3 {
			inst.Exchange = parts[2]
		}
		out = append(out, inst)
	}
	return out, nil
}

// resolveWindow builds the requested range from either a trailing period or
// explicit start/end bounds.
func resolveWindow(start, end, period string, now time.Time) (model.Range, error) {
	if period != "" {
		n, unit, err := parsePeriod(period)
		if err != nil {
			return model.Range{}, err
		}
		return model.PeriodRange(n, unit, now)
	}
	if start == "" || end == "" {
		return model.Range{}, fmt.Errorf("either -period or both -start and -end are required")
	}
	s, err := parseTime(start)
	if err != nil {
		return model.Range{}, fmt.Errorf("-start: %w", err)
	}
	e, err := parseTime(end)
	if err != nil {
		return model.Range{}, fmt.Errorf("-end: %w", err)
	}
	return model.NewRange(s, e)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parsePeriod splits a count and a unit word, e.g. "30day" or "10year".
func parsePeriod(s string) (int, string, error) {
	if s == "ytd" {
		return 0, "ytd", nil
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, "", fmt.Errorf("malformed period %q, want e.g. 30day, 10year, ytd", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, "", err
	}
	return n, s[i:], nil
}

// buildProviders constructs the provider list in configured priority order.
func buildProviders(cfg config.ProvidersConfig) ([]provider.Provider, error) {
	out := make([]provider.Provider, 0, len(cfg.Order))
	for _, name := range cfg.Order {
		switch name {
		case "alpaca":
			out = append(out, provider.NewAlpaca(
				cfg.Alpaca.APIKey, cfg.Alpaca.APISecret,
				cfg.Alpaca.BaseURL, cfg.Alpaca.Feed, cfg.CallTimeout,
			))
		case "polygon":
			out = append(out, provider.NewPolygon(cfg.Polygon.APIKey, cfg.CallTimeout))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return out, nil
}

// calendars picks session calendars by cadence: intraday bars are judged
// against exchange trading hours, daily and coarser against trading days.
func calendars(cadence model.Cadence) calendar.Source {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	if !cadence.Intraday() {
		return calendar.StaticSource{Default: calendar.NewWeekdayFullDay(loc, nil)}
	}
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}
	session := calendar.NewWeekly(loc, 9, 30, 16, 0, weekdays, nil)
	return calendar.StaticSource{Default: session}
}
