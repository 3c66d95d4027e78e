package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/jobs"
)

type dedupeFilter struct {
	logger *zap.Logger
}

// NewDedupe creates a filter that drops repeated postings of the same job.
// Two jobs are the same when title, company and location match after normalization.
func NewDedupe(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dedupeFilter{logger: logger}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

// Disable is a no-op: duplicates are always removed.
func (f *dedupeFilter) Disable(string) {}

func (f *dedupeFilter) IsEnabled() bool { return true }

func (f *dedupeFilter) Validate() error { return nil }

func (f *dedupeFilter) Apply(_ context.Context, v *jobs.Jobs) (*jobs.Jobs, Step, error) {
	initial := v.Len()
	dropped := v.Dedupe()
	if len(dropped) > 0 {
		f.logger.Info("excluding duplicated jobs",
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *dedupeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
