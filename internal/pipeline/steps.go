package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/pixelaudit/internal/aggregate"
	"github.com/nao1215/pixelaudit/internal/extract"
	"github.com/nao1215/pixelaudit/internal/model"
	"github.com/nao1215/pixelaudit/internal/probe"
)

// ExtractStep turns the audit's rows into work items.
type ExtractStep struct {
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewExtractStep creates an extract step. A nil extractor uses the default
// impression export columns.
func NewExtractStep(extractor *extract.Extractor, logger *slog.Logger) *ExtractStep {
	if extractor == nil {
		extractor = extract.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{extractor: extractor, logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts work items from audit.Rows.
func (s *ExtractStep) Do(_ context.Context, audit *model.Audit) error {
	audit.Items, audit.ExtractStats = s.extractor.ExtractAll(audit.Rows)

	s.logger.Info("extracted pixel URLs",
		"rows", audit.ExtractStats.Rows,
		"rows_skipped", audit.ExtractStats.RowsSkipped,
		"rows_repaired", audit.ExtractStats.RowsRepaired,
		"urls", audit.ExtractStats.URLs,
	)
	return nil
}

// DispatchStep probes every work item.
type DispatchStep struct {
	dispatcher *Dispatcher
}

// NewDispatchStep creates a dispatch step around d.
func NewDispatchStep(d *Dispatcher) *DispatchStep {
	return &DispatchStep{dispatcher: d}
}

// Name returns the step name.
func (s *DispatchStep) Name() string {
	return "dispatch"
}

// AlwaysRun implements AlwaysRunner. Once ctx is done the dispatcher records
// every item as a timeout without touching the network, so running it keeps
// one outcome per extracted item.
func (s *DispatchStep) AlwaysRun() bool {
	return true
}

// Do probes audit.Items and stores the outcomes. It never fails: if ctx is
// cancelled mid-run the unprobed items are recorded as timeouts.
func (s *DispatchStep) Do(ctx context.Context, audit *model.Audit) error {
	audit.Outcomes = s.dispatcher.Dispatch(ctx, audit.Items)
	return nil
}

// AggregateStep folds the outcomes into the report.
type AggregateStep struct {
	stableOrder bool
}

// NewAggregateStep creates an aggregate step. With stableOrder, failure
// lists follow input row order instead of completion order.
func NewAggregateStep(stableOrder bool) *AggregateStep {
	return &AggregateStep{stableOrder: stableOrder}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// AlwaysRun implements AlwaysRunner. Outcomes collected before an
// interruption are still reported.
func (s *AggregateStep) AlwaysRun() bool {
	return true
}

// Do builds audit.Report and audit.Breakdown.
func (s *AggregateStep) Do(_ context.Context, audit *model.Audit) error {
	var opts []aggregate.Option
	if s.stableOrder {
		opts = append(opts, aggregate.WithStableOrder())
	}

	audit.Report = aggregate.Aggregate(audit.Outcomes, opts...)
	audit.Breakdown = aggregate.Breakdown(audit.Outcomes)
	audit.Elapsed = time.Since(audit.StartedAt)
	return nil
}

// DefaultPipelineConfig holds the settings DefaultPipeline wires into its steps.
type DefaultPipelineConfig struct {
	// IdentifierColumn and URLColumn override the export column names.
	IdentifierColumn string
	URLColumn        string

	// StableOrder orders failure lists by input row.
	StableOrder bool

	// OnOutcome receives every outcome as it is recorded.
	OnOutcome func(model.ProbeOutcome)
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineColumns sets the identifier and URL-list column names.
// Empty names keep the defaults.
func WithPipelineColumns(identifierColumn, urlColumn string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IdentifierColumn = identifierColumn
		c.URLColumn = urlColumn
	}
}

// WithPipelineStableOrder sets whether failure lists follow input row order.
func WithPipelineStableOrder(stable bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.StableOrder = stable
	}
}

// WithPipelineOutcomeHook registers a progress callback.
func WithPipelineOutcomeHook(fn func(model.ProbeOutcome)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OnOutcome = fn
	}
}

// DefaultPipeline builds the standard extract, dispatch and aggregate
// pipeline. It fails only when cfg is invalid or prober is nil.
//
// Design decision: Stable order is the default. Completion order depends
// on network timing, so two runs over the same export would list failures
// differently; ordering by input row makes reports diffable. Pass
// WithPipelineStableOrder(false) for completion order.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineColumns, etc).
func DefaultPipeline(prober probe.Prober, cfg DispatcherConfig, pipelineOpts []Option, configOpts ...DefaultPipelineOption) (*Pipeline, error) {
	p := New(pipelineOpts...)

	pc := &DefaultPipelineConfig{StableOrder: true}
	for _, opt := range configOpts {
		opt(pc)
	}

	dispatcherOpts := []DispatcherOption{WithDispatchLogger(p.logger)}
	if pc.OnOutcome != nil {
		dispatcherOpts = append(dispatcherOpts, WithOutcomeHook(pc.OnOutcome))
	}
	d, err := NewDispatcher(prober, cfg, dispatcherOpts...)
	if err != nil {
		return nil, err
	}

	extractor := extract.New(
		extract.WithIdentifierColumn(pc.IdentifierColumn),
		extract.WithURLColumn(pc.URLColumn),
		extract.WithLogger(p.logger),
	)

	p.AddSteps(
		NewExtractStep(extractor, p.logger),
		NewDispatchStep(d),
		NewAggregateStep(pc.StableOrder),
	)
	return p, nil
}
