// Package orchestrator drives reconciliation: it compares stored bars against
// what a trading calendar says should exist, then walks an ordered provider
// list to fill the gaps, writing fetched bars back through the store.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tradehouse/bardata/internal/calendar"
	"github.com/tradehouse/bardata/internal/gap"
	"github.com/tradehouse/bardata/internal/model"
	"github.com/tradehouse/bardata/internal/provider"
	"github.com/tradehouse/bardata/internal/store"
	"github.com/tradehouse/bardata/internal/window"
)

// Options controls a reconciliation run.
type Options struct {
	// SessionOnly restricts gap detection and reads to regular-session bars.
	SessionOnly bool

	// Deadline, when nonzero, bounds the whole run. Work stops at the
	// deadline and whatever was written stays.
	Deadline time.Time

	// Concurrency caps simultaneous instruments in ReconcileAll. Zero or
	// negative means one at a time.
	Concurrency int
}

// Result reports the outcome for one instrument.
type Result struct {
	// Bars holds the stored bars for the requested window after
	// reconciliation, ascending by timestamp.
	Bars []model.Bar

	// Missing lists the windows still absent when the run ended. Empty means
	// the request was fully satisfied.
	Missing []model.Range

	// Written counts bars newly persisted during the run.
	Written int

	// Dropped counts upstream records discarded by validation.
	Dropped int

	// Sources lists the providers that contributed at least one fetch, in
	// the order they were tried.
	Sources []string
}

// Satisfied reports whether the requested window is fully covered.
func (r Result) Satisfied() bool { return len(r.Missing) == 0 }

// InstrumentResult pairs a Result with its instrument for batch runs. Err is
// set when that instrument's run failed; other instruments are unaffected.
type InstrumentResult struct {
	Instrument model.Instrument
	Result     Result
	Err        error
}

// Reconciler fills gaps in stored bar history from an ordered provider list.
type Reconciler struct {
	store     store.BarStore
	providers []provider.Provider
	calendars calendar.Source
	logger    *slog.Logger
	updater   string
}

// New creates a Reconciler. providers are tried in the given order; updater
// names the running process in bar provenance.
func New(s store.BarStore, providers []provider.Provider, calendars calendar.Source, logger *slog.Logger, updater string) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:     s,
		providers: providers,
		calendars: calendars,
		logger:    logger,
		updater:   updater,
	}
}

// Reconcile ensures the store covers requested for one instrument and
// cadence. Each round re-reads the store, recomputes the missing windows, and
// tries the next provider not yet used in this invocation, so the loop runs
// at most once per provider. Provider failures cost only their sub-window; a
// storage failure ends the run with the partial result.
func (r *Reconciler) Reconcile(ctx context.Context, instrument model.Instrument, cadence model.Cadence, requested model.Range, opts Options) (Result, error) {
	if err := requested.Validate(); err != nil {
		return Result{}, err
	}
	if !cadence.Valid() {
		return Result{}, fmt.Errorf("invalid cadence %v", cadence)
	}

	if !opts.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, opts.Deadline)
		defer cancel()
	}

	fetchedBy := r.updater + "/" + uuid.NewString()
	cal := r.calendars.For(instrument.Exchange)
	log := r.logger.With(
		"symbol", instrument.Symbol,
		"cadence", cadence.String(),
		"range", requested.String(),
	)

	var res Result
	used := make(map[string]struct{}, len(r.providers))

	for {
		bars, err := r.store.ReadBars(ctx, instrument.ID, cadence, requested, opts.SessionOnly)
		if err != nil {
			return res, fmt.Errorf("read stored bars: %w", err)
		}
		res.Bars = bars
		res.Missing = gap.FindMissing(bars, requested, cadence, opts.SessionOnly, cal)
		if len(res.Missing) == 0 {
			log.Info("reconcile satisfied", "bars", len(bars), "written", res.Written)
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p := r.nextProvider(used)
		if p == nil {
			log.Warn("providers exhausted",
				"missing", len(res.Missing),
				"written", res.Written,
			)
			return res, nil
		}
		used[p.Name()] = struct{}{}
		res.Sources = append(res.Sources, p.Name())

		written, dropped, err := r.fetchRound(ctx, p, instrument, cadence, res.Missing, opts, cal, fetchedBy, log)
		res.Written += written
		res.Dropped += dropped
		if err != nil {
			return res, err
		}
	}
}

// nextProvider returns the first provider not yet used this invocation.
func (r *Reconciler) nextProvider(used map[string]struct{}) provider.Provider {
	for _, p := range r.providers {
		if _, ok := used[p.Name()]; !ok {
			return p
		}
	}
	return nil
}

// fetchRound pulls every missing window from one provider, splitting to its
// lookback limit first. Fetch errors skip the sub-window; write errors abort
// the round.
func (r *Reconciler) fetchRound(
	ctx context.Context,
	p provider.Provider,
	instrument model.Instrument,
	cadence model.Cadence,
	missing []model.Range,
	opts Options,
	cal calendar.Calendar,
	fetchedBy string,
	log *slog.Logger,
) (written, dropped int, err error) {
	windows := window.Split(missing, p.MaxLookback(cadence))
	var covered []model.Range
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return written, dropped, err
		}

		obs, fetchErr := p.Fetch(ctx, instrument, cadence, w, opts.SessionOnly)
		if fetchErr != nil {
			log.Warn("fetch failed",
				"provider", p.Name(),
				"window", w.String(),
				"error", fetchErr,
			)
			continue
		}
		covered = append(covered, w)

		bars, bad := r.buildBars(obs, instrument, w, cal, p.Name(), fetchedBy)
		dropped += bad
		if len(bars) == 0 {
			continue
		}

		n, writeErr := r.store.WriteBars(ctx, cadence, bars)
		written += n
		if writeErr != nil {
			return written, dropped, fmt.Errorf("write bars from %s: %w", p.Name(), writeErr)
		}
	}

	// Fetch-level residual; the next round's store re-read decides what is
	// actually still missing.
	residual := window.Subtract(missing, covered)
	log.Info("provider round complete",
		"provider", p.Name(),
		"windows", len(windows),
		"unfetched", len(residual),
		"written", written,
		"dropped", dropped,
	)
	return written, dropped, nil
}

// buildBars converts observations to validated bars with provenance. Records
// outside the window or failing validation are dropped and counted.
func (r *Reconciler) buildBars(obs []provider.Observation, instrument model.Instrument, w model.Range, cal calendar.Calendar, source, fetchedBy string) ([]model.Bar, int) {
	now := time.Now().UnixMilli()
	bars := make([]model.Bar, 0, len(obs))
	dropped := 0
	for _, o := range obs {
		if !w.Contains(o.Timestamp) {
			dropped++
			continue
		}
		b := model.Bar{
			InstrumentID:     instrument.ID,
			Timestamp:        o.Timestamp,
			Open:             o.Open,
			High:             o.High,
			Low:              o.Low,
			Close:            o.Close,
			AdjustedClose:    o.AdjustedClose,
			Volume:           o.Volume,
			IsRegularSession: cal.IsOpen(time.UnixMilli(o.Timestamp).UTC()),
			Source:           source,
			FetchedAt:        now,
			FetchedBy:        fetchedBy,
		}
		if err := b.Validate(); err != nil {
			dropped++
			continue
		}
		bars = append(bars, b)
	}
	return bars, dropped
}

// ReconcileAll reconciles every instrument over the same cadence and window,
// up to opts.Concurrency at a time. One instrument's failure is recorded in
// its InstrumentResult and never aborts the others.
func (r *Reconciler) ReconcileAll(ctx context.Context, instruments []model.Instrument, cadence model.Cadence, requested model.Range, opts Options) []InstrumentResult {
	results := make([]InstrumentResult, len(instruments))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, inst := range instruments {
		i, inst := i, inst
		g.Go(func() error {
			res, err := r.Reconcile(gctx, inst, cadence, requested, opts)
			results[i] = InstrumentResult{Instrument: inst, Result: res, Err: err}
			if err != nil {
				r.logger.Error("reconcile failed",
					"symbol", inst.Symbol,
					"error", err,
				)
			}
			return nil
		})
	}
	// Workers never return errors, so Wait only synchronizes.
	_ = g.Wait()
	return results
}
