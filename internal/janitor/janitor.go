// Package janitor periodically sweeps the staging area. The worker removes
// its own staging directory after every job, so anything left behind
// belongs to a job that never ran to completion (crashed worker, lost
// queue); after a grace period those directories are garbage.
package janitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/storage"
)

// Janitor runs the periodic sweep.
type Janitor struct {
	staging  *storage.Staging
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger
}

// New constructs a Janitor from the injected config values.
func New(staging *storage.Staging, interval, maxAge time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		staging:  staging,
		interval: interval,
		maxAge:   maxAge,
		log:      log.With().Str("component", "janitor").Logger(),
	}
}

// Run sweeps on a ticker until the context is cancelled. It blocks; start
// it in its own goroutine.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	removed, err := j.staging.SweepOlderThan(j.maxAge)
	if err != nil {
		j.log.Warn().Err(err).Msg("staging sweep")
		return
	}
	if removed > 0 {
		j.log.Info().Int("removed", removed).Msg("swept stale staging directories")
	}
}
