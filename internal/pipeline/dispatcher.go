package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/pixelaudit/internal/model"
	"github.com/nao1215/pixelaudit/internal/probe"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxConcurrency is the number of probes allowed in flight at once.
	DefaultMaxConcurrency = 30

	// DefaultPerRequestTimeout bounds each probe.
	DefaultPerRequestTimeout = 10 * time.Second
)

// DispatcherConfig controls a Dispatcher.
type DispatcherConfig struct {
	// MaxConcurrency is the ceiling on simultaneously outstanding probes.
	MaxConcurrency int

	// PerRequestTimeout is the deadline applied to every probe.
	PerRequestTimeout time.Duration
}

// DefaultDispatcherConfig returns the configuration used by the CLI when no
// flags are given.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxConcurrency:    DefaultMaxConcurrency,
		PerRequestTimeout: DefaultPerRequestTimeout,
	}
}

// Validate checks that both limits are positive.
func (c DispatcherConfig) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.MaxConcurrency)
	}
	if c.PerRequestTimeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, c.PerRequestTimeout)
	}
	return nil
}

// Dispatcher probes work items with bounded concurrency.
//
// At most MaxConcurrency probes are outstanding at any instant. Items are
// admitted in submission order and a slot freed by a completing probe is
// handed to the next item immediately, so a few slow URLs never stall the
// rest of the run. Every submitted item yields exactly one outcome; probe
// failures are outcomes, not errors.
//
// A Dispatcher is meant for one run. Create a new one for every run.
type Dispatcher struct {
	prober probe.Prober
	cfg    DispatcherConfig
	logger *slog.Logger

	// onOutcome is called once per outcome, serialized.
	onOutcome func(model.ProbeOutcome)

	mu       sync.Mutex
	outcomes []model.ProbeOutcome
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets a custom logger for the dispatcher.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithOutcomeHook registers fn to be called for every outcome as it is
// recorded. Calls never overlap, so fn needs no locking of its own, but it
// must return quickly because it holds up the completing probe's slot.
func WithOutcomeHook(fn func(model.ProbeOutcome)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onOutcome = fn
	}
}

// NewDispatcher creates a Dispatcher. It fails when cfg is invalid or
// prober is nil.
func NewDispatcher(prober probe.Prober, cfg DispatcherConfig, opts ...DispatcherOption) (*Dispatcher, error) {
	if prober == nil {
		return nil, ErrNilProber
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		prober: prober,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() DispatcherConfig {
	return d.cfg
}

// Dispatch probes every item and returns the outcomes in completion order.
// It returns only after every item has an outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, items []model.WorkItem) []model.ProbeOutcome {
	return d.dispatch(ctx, slices.Values(items), len(items))
}

// DispatchSeq is Dispatch for producers that yield items lazily.
// The producer is pulled only as fast as probe slots free up.
func (d *Dispatcher) DispatchSeq(ctx context.Context, seq iter.Seq[model.WorkItem]) []model.ProbeOutcome {
	return d.dispatch(ctx, seq, 0)
}

func (d *Dispatcher) dispatch(ctx context.Context, seq iter.Seq[model.WorkItem], sizeHint int) []model.ProbeOutcome {
	d.mu.Lock()
	d.outcomes = make([]model.ProbeOutcome, 0, sizeHint)
	d.mu.Unlock()

	d.logger.Info("starting dispatch",
		"items", sizeHint,
		"concurrency", d.cfg.MaxConcurrency,
		"timeout", d.cfg.PerRequestTimeout,
	)
	startTime := time.Now()

	// Design decision: A plain Group, not errgroup.WithContext. Probes
	// never return errors and a failing URL must not cancel its siblings;
	// SetLimit alone provides the concurrency ceiling, and Go blocking on
	// a full group gives backfill without a separate queue.
	var g errgroup.Group
	g.SetLimit(d.cfg.MaxConcurrency)

	submitted := 0
	for item := range seq {
		submitted++

		// Once the caller gives up, the remaining items are not probed but
		// still get an outcome.
		if err := ctx.Err(); err != nil {
			d.record(model.NewTimeout(item, err, 0))
			continue
		}

		// Go blocks until a slot is free.
		g.Go(func() error {
			d.record(d.probe(ctx, item))
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probe goroutines always return nil

	d.mu.Lock()
	outcomes := d.outcomes
	d.outcomes = nil
	d.mu.Unlock()

	d.logger.Info("dispatch complete",
		"items", submitted,
		"outcomes", len(outcomes),
		"elapsed", time.Since(startTime),
	)
	return outcomes
}

// probe runs one probe under its own deadline and classifies the result.
func (d *Dispatcher) probe(ctx context.Context, item model.WorkItem) model.ProbeOutcome {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.PerRequestTimeout)
	defer cancel()

	start := time.Now()
	code, err := d.safeProbe(ctx, item.URL)
	outcome := model.Classify(item, code, err, time.Since(start))

	d.logger.Debug("probe finished",
		"identifier", item.Identifier,
		"url", item.URL,
		"outcome", outcome.Kind,
		"status", outcome.StatusCode,
		"elapsed", outcome.Elapsed,
	)
	return outcome
}

// safeProbe converts a panicking prober into an error so the item still
// gets its outcome.
func (d *Dispatcher) safeProbe(ctx context.Context, url string) (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = 0, fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return d.prober.Probe(ctx, url)
}

// record appends one outcome and notifies the hook.
func (d *Dispatcher) record(outcome model.ProbeOutcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.outcomes = append(d.outcomes, outcome)
	if d.onOutcome != nil {
		d.onOutcome(outcome)
	}
}
