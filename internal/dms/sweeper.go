package dms

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically runs the inactivity evaluation over all ACTIVE
// users. The sweep is the authoritative trigger path; request handlers
// never flip dms_status themselves.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper builds a sweeper with the given interval.
func NewSweeper(engine *Engine, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{engine: engine, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until the context is
// canceled. Sweep errors are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("dms sweeper started", slog.Duration("interval", s.interval))

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("dms sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	triggered, err := s.engine.EvaluateAll(ctx)
	if err != nil {
		s.logger.Error("dms sweep failed", slog.Any("error", err))
		return
	}
	if triggered > 0 {
		s.logger.Info("dms sweep completed", slog.Int("triggered", triggered))
	}
}
