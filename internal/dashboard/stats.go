package dashboard

import (
	"context"
	"errors"

	"github.com/worklane/worklane-client/internal/api"
	"go.uber.org/zap"
)

var errMissingStatsBackend = errors.New("dashboard: stats backend dependency required")

// StatsBackend is the slice of the platform API the loader needs.
type StatsBackend interface {
	ApplicantStats(ctx context.Context, jobPostingID int64) (api.ApplicantStats, error)
}

// StatsLoaderConfig describes the loader's dependencies.
type StatsLoaderConfig struct {
	Backend StatsBackend
	Logger  *zap.Logger
}

// StatsLoader fetches the applicant breakdown for a job posting. Failures
// degrade to the all-zero shape instead of propagating; the dashboard
// renders empty counts rather than an error banner.
type StatsLoader struct {
	backend StatsBackend
	logger  *zap.Logger
}

// NewStatsLoader validates dependencies and constructs a loader.
func NewStatsLoader(cfg StatsLoaderConfig) (*StatsLoader, error) {
	if cfg.Backend == nil {
		return nil, errMissingStatsBackend
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsLoader{backend: cfg.Backend, logger: logger}, nil
}

// Load returns the stats for the posting, or the zero shape when the posting
// id is unset or the fetch fails. No error escapes to the caller.
func (l *StatsLoader) Load(ctx context.Context, jobPostingID int64) api.ApplicantStats {
	if jobPostingID == 0 {
		return api.ApplicantStats{}
	}

	stats, err := l.backend.ApplicantStats(ctx, jobPostingID)
	if err != nil {
		l.logger.Warn("applicant stats fetch failed",
			zap.Int64("jobPostingId", jobPostingID),
			zap.Error(err))
		return api.ApplicantStats{}
	}
	return stats
}
