package reaper

import (
	"context"
	"fmt"
	"time"

	"groundslot/internal/clock"
	"groundslot/internal/db"
	"groundslot/internal/lock"
	"groundslot/internal/logger"
	"groundslot/internal/metrics"
	"groundslot/internal/notifier"
	"groundslot/internal/slot"
)

const DefaultInterval = time.Minute

// Elector decides whether this instance should sweep on the current tick.
type Elector interface {
	Acquire(ctx context.Context) (bool, error)
}

type alwaysLeader struct{}

func (alwaysLeader) Acquire(context.Context) (bool, error) { return true, nil }

// Reaper returns slots whose hold expired to available.
type Reaper struct {
	slots     slot.Repository
	holds     lock.Repository
	tx        db.TxRunner
	publisher notifier.Publisher
	clock     clock.Clock
	interval  time.Duration
	elector   Elector
}

type Option func(*Reaper)

func WithInterval(d time.Duration) Option {
	return func(r *Reaper) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithElector(e Elector) Option {
	return func(r *Reaper) {
		if e != nil {
			r.elector = e
		}
	}
}

func New(slots slot.Repository, holds lock.Repository, tx db.TxRunner, publisher notifier.Publisher, clk clock.Clock, opts ...Option) *Reaper {
	r := &Reaper{
		slots:     slots,
		holds:     holds,
		tx:        tx,
		publisher: publisher,
		clock:     clk,
		interval:  DefaultInterval,
		elector:   alwaysLeader{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start sweeps on every tick until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info("expiry reaper started", "interval", r.interval.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info("expiry reaper stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reaper) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RecordReaperRun("panic")
			logger.Error("reaper run panicked", "panic", rec)
		}
	}()

	leader, err := r.elector.Acquire(ctx)
	if err != nil {
		logger.Warn("reaper lease unavailable, sweeping anyway", "error", err)
		leader = true
	}
	if !leader {
		metrics.RecordReaperRun("skipped")
		return
	}

	n, err := r.Sweep(ctx)
	if err != nil {
		metrics.RecordReaperRun("error")
		logger.Error("reaper run failed", "error", err)
		return
	}
	metrics.RecordReaperRun("ok")
	if n > 0 {
		logger.Info("reclaimed expired holds", "slots", n)
	}
}

// Sweep runs one reclamation pass and reports how many slots it freed.
// It is safe to call concurrently with other sweeps and with acquires.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	now := r.clock.Now()

	var (
		reclaimed []slot.Reclaimed
		orphans   int64
	)
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		reclaimed, err = r.slots.ReclaimExpired(ctx, now)
		if err != nil {
			return err
		}

		if len(reclaimed) > 0 {
			ids := make([]string, 0, len(reclaimed))
			for _, rs := range reclaimed {
				ids = append(ids, rs.ID)
			}
			if _, err := r.holds.DeleteHoldsBySlot(ctx, ids); err != nil {
				return err
			}
		}

		orphans, err = r.holds.DeleteOrphanedHolds(ctx, now)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("sweep expired holds: %w", err)
	}

	for _, rs := range reclaimed {
		r.publisher.Publish(notifier.NewEvent(notifier.EventSlotExpired, rs.ID, string(slot.StatusAvailable), now).
			WithHolder(rs.PreviousHolder))
	}
	metrics.RecordHoldsReclaimed(len(reclaimed))
	if orphans > 0 {
		logger.Debug("removed orphaned holds", "count", orphans)
	}

	return len(reclaimed), nil
}
