package aggregate

import (
	"slices"

	"github.com/nao1215/pixelaudit/internal/model"
)

// options holds the aggregation settings.
type options struct {
	stableOrder bool
}

// Option configures Aggregate.
type Option func(*options)

// WithStableOrder orders failure lists by work item sequence instead of by
// outcome arrival.
func WithStableOrder() Option {
	return func(o *options) {
		o.stableOrder = true
	}
}

// Aggregate builds a Report from the outcomes of one run.
//
// Success outcomes increment SuccessCount. HTTP failures and timeouts
// increment FailedCount and append their URL to the list of their
// identifier, creating the list on first use. The input slice is not
// modified.
func Aggregate(outcomes []model.ProbeOutcome, opts ...Option) *model.Report {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}

	ordered := outcomes
	if cfg.stableOrder {
		ordered = slices.Clone(outcomes)
		slices.SortStableFunc(ordered, func(a, b model.ProbeOutcome) int {
			return a.Seq - b.Seq
		})
	}

	report := model.NewReport()
	for _, o := range ordered {
		switch o.Kind {
		case model.OutcomeSuccess:
			report.SuccessCount++
		case model.OutcomeHTTPFailure, model.OutcomeTimeout:
			report.FailedCount++
			report.FailedByIdentifier[o.Identifier] = append(report.FailedByIdentifier[o.Identifier], o.URL)
		}
	}
	return report
}

// Breakdown counts outcomes per variant and per HTTP status code.
func Breakdown(outcomes []model.ProbeOutcome) model.Breakdown {
	b := model.Breakdown{StatusCodes: make(map[int]int)}
	for _, o := range outcomes {
		switch o.Kind {
		case model.OutcomeSuccess:
			b.Success++
		case model.OutcomeHTTPFailure:
			b.HTTPFailure++
		case model.OutcomeTimeout:
			b.Timeout++
		}
		if o.StatusCode != 0 {
			b.StatusCodes[o.StatusCode]++
		}
	}
	return b
}
