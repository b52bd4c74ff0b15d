package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groundslot/internal/apperror"
	"groundslot/internal/clock"
	"groundslot/internal/db"
	"groundslot/internal/logger"
	"groundslot/internal/metrics"
	"groundslot/internal/notifier"
	"groundslot/internal/slot"

	"github.com/google/uuid"
)

const (
	DefaultTTL = 5 * time.Minute
	MaxTTL     = 30 * time.Minute
)

type AcquireInput struct {
	SlotID    string
	ChannelID string
	// TTL of zero means the configured default.
	TTL      time.Duration
	Metadata map[string]string
}

type Service interface {
	Acquire(ctx context.Context, in AcquireInput) (*Hold, error)
	Release(ctx context.Context, holdID string) error
	GetHold(ctx context.Context, holdID string) (*Hold, error)
}

type service struct {
	holds      Repository
	slots      slot.Repository
	tx         db.TxRunner
	publisher  notifier.Publisher
	clock      clock.Clock
	defaultTTL time.Duration
	maxTTL     time.Duration
}

type Option func(*service)

func WithDefaultTTL(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

func WithMaxTTL(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.maxTTL = d
		}
	}
}

func NewService(holds Repository, slots slot.Repository, tx db.TxRunner, publisher notifier.Publisher, clk clock.Clock, opts ...Option) Service {
	s := &service{
		holds:      holds,
		slots:      slots,
		tx:         tx,
		publisher:  publisher,
		clock:      clk,
		defaultTTL: DefaultTTL,
		maxTTL:     MaxTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	modeNew      = "new"
	modeTakeover = "takeover"
	modeExisting = "existing"
)

func (s *service) Acquire(ctx context.Context, in AcquireInput) (*Hold, error) {
	ttl, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	var (
		hold *Hold
		mode string
	)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		hold, mode = nil, ""

		_, err := s.slots.TryLock(ctx, in.SlotID, in.ChannelID, now, expiresAt)
		switch {
		case err == nil:
			mode = modeNew
		case errors.Is(err, slot.ErrPreconditionFailed):
			var existing *Hold
			existing, mode, err = s.resolveContention(ctx, in, now, expiresAt)
			if err != nil {
				return err
			}
			if existing != nil {
				hold = existing
				return nil
			}
		default:
			return apperror.Store("failed to lock slot", err)
		}

		hold = &Hold{
			ID:        uuid.NewString(),
			SlotID:    in.SlotID,
			HolderID:  in.ChannelID,
			ExpiresAt: expiresAt,
			Metadata:  Metadata(in.Metadata).Clone(),
			CreatedAt: now,
		}
		if err := s.holds.CreateHold(ctx, hold); err != nil {
			return apperror.Store("failed to record hold", err)
		}
		return nil
	})
	if err != nil {
		if code := apperror.CodeOf(err); code != "" {
			metrics.RecordLockConflict(code)
		}
		return nil, err
	}

	metrics.RecordLockAcquired(mode)
	if mode != modeExisting {
		s.publisher.Publish(notifier.NewEvent(notifier.EventSlotLocked, hold.SlotID, string(slot.StatusLocked), now).
			WithHolder(hold.HolderID))
		logger.Info("slot locked",
			"slot_id", hold.SlotID,
			"hold_id", hold.ID,
			"channel", hold.HolderID,
			"expires_at", hold.ExpiresAt,
			"mode", mode,
		)
	}

	return hold, nil
}

// resolveContention runs after the available->locked write matched nothing.
// It returns the caller's own live hold, takes over an expired one, or
// reports why the slot cannot be held.
func (s *service) resolveContention(ctx context.Context, in AcquireInput, now, expiresAt time.Time) (*Hold, string, error) {
	current, err := s.slots.GetSlotByID(ctx, in.SlotID)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return nil, "", apperror.NotFound("slot not found", err)
		}
		return nil, "", apperror.Store("failed to load slot", err)
	}

	switch {
	case current.Status == slot.StatusBooked:
		return nil, "", apperror.SlotBooked()
	case current.Status == slot.StatusBlocked:
		return nil, "", apperror.SlotBlocked()
	case current.HeldBy(in.ChannelID, now):
		existing, err := s.holds.GetHoldBySlot(ctx, in.SlotID)
		if err != nil {
			return nil, "", apperror.Store("failed to load existing hold", err)
		}
		return existing, modeExisting, nil
	case current.HoldExpired(now):
		if _, err := s.holds.DeleteHoldsBySlot(ctx, []string{in.SlotID}); err != nil {
			return nil, "", apperror.Store("failed to remove stale hold", err)
		}
		_, err := s.slots.TryLockExpired(ctx, in.SlotID, in.ChannelID, now, expiresAt)
		if errors.Is(err, slot.ErrPreconditionFailed) {
			return nil, "", apperror.SlotLocked()
		}
		if err != nil {
			return nil, "", apperror.Store("failed to take over expired hold", err)
		}
		return nil, modeTakeover, nil
	default:
		return nil, "", apperror.SlotLocked()
	}
}

func (s *service) validate(in AcquireInput) (time.Duration, error) {
	if in.SlotID == "" {
		return 0, apperror.Validation("slotId is required")
	}
	if in.ChannelID == "" {
		return 0, apperror.Validation("channel id is required")
	}

	ttl := in.TTL
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl < 0 {
		return 0, apperror.Validation("ttl must be positive")
	}
	if ttl > s.maxTTL {
		return 0, apperror.Validation(fmt.Sprintf("ttl must not exceed %s", s.maxTTL))
	}
	return ttl, nil
}

func (s *service) Release(ctx context.Context, holdID string) error {
	if holdID == "" {
		return apperror.Validation("hold id is required")
	}

	var (
		released *Hold
		unlocked bool
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		h, err := s.holds.DeleteHold(ctx, holdID)
		if err != nil {
			if errors.Is(err, ErrHoldNotFound) {
				return apperror.NotFound("hold not found", err)
			}
			return apperror.Store("failed to delete hold", err)
		}
		released = h

		_, err = s.slots.Unlock(ctx, h.SlotID, h.HolderID)
		switch {
		case err == nil:
			unlocked = true
		case errors.Is(err, slot.ErrPreconditionFailed):
			// The slot already moved on; dropping the stray hold is all that is left.
			unlocked = false
		default:
			return apperror.Store("failed to unlock slot", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !unlocked {
		logger.Warn("released hold did not own its slot", "hold_id", released.ID, "slot_id", released.SlotID)
		return nil
	}

	metrics.RecordLockReleased()
	s.publisher.Publish(notifier.NewEvent(notifier.EventSlotReleased, released.SlotID, string(slot.StatusAvailable), s.clock.Now()).
		WithHolder(released.HolderID))
	logger.Info("slot released", "slot_id", released.SlotID, "hold_id", released.ID, "channel", released.HolderID)

	return nil
}

func (s *service) GetHold(ctx context.Context, holdID string) (*Hold, error) {
	if holdID == "" {
		return nil, apperror.Validation("hold id is required")
	}

	h, err := s.holds.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, ErrHoldNotFound) {
			return nil, apperror.NotFound("hold not found", err)
		}
		return nil, apperror.Store("failed to load hold", err)
	}
	return h, nil
}
