package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically removes expired sessions. Lookups already reject
// expired tokens; the sweep only reclaims rows.
type Sweeper struct {
	purger   SessionPurger
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(purger SessionPurger, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{purger: purger, interval: interval, log: log}
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("session sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error().Err(err).Msg("session sweep failed")
		}
		return
	}
	if n > 0 {
		s.log.Info().Int64("purged", n).Msg("expired sessions purged")
	}
}
