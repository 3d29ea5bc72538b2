package jobs

import (
	"context"
	"fmt"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/internal/s1_fetch"
	"github.com/finsightlab/finsight/pkg/logger"
)

// UniverseRefreshJob keeps the discovery cache warm so preference-driven
// runs start from a fresh screener universe instead of scraping inline
type UniverseRefreshJob struct {
	discoverer *s1_fetch.CachedDiscoverer
	schedule   string
	logger     *logger.Logger
}

// NewUniverseRefreshJob creates the universe refresh job
func NewUniverseRefreshJob(discoverer *s1_fetch.CachedDiscoverer, schedule string, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		discoverer: discoverer,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule expression
func (j *UniverseRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes the unfiltered default universe
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	symbols, err := j.discoverer.Refresh(ctx, contracts.Preferences{})
	if err != nil {
		return fmt.Errorf("universe refresh: %w", err)
	}

	j.logger.WithField("count", len(symbols)).Info("Universe refreshed")
	return nil
}
