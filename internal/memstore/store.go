// Package memstore keeps slots, holds, bookings and channels in process
// memory. A single mutex is the store-level critical section: every
// repository call and every WithTx body runs under it, so multi-record
// operations are atomic exactly as they are inside a Postgres transaction.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"groundslot/internal/booking"
	"groundslot/internal/channel"
	"groundslot/internal/lock"
	"groundslot/internal/slot"
)

type Store struct {
	mu       sync.Mutex
	slots    map[string]slot.Slot
	holds    map[string]lock.Hold
	bookings map[string]booking.Booking
	channels map[string]channel.Channel
}

func New() *Store {
	return &Store{
		slots:    make(map[string]slot.Slot),
		holds:    make(map[string]lock.Hold),
		bookings: make(map[string]booking.Booking),
		channels: make(map[string]channel.Channel),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// acquire takes the store mutex unless ctx already runs inside WithTx.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx runs fn holding the store mutex. When fn fails every change it made
// is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	slots    map[string]slot.Slot
	holds    map[string]lock.Hold
	bookings map[string]booking.Booking
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		slots:    make(map[string]slot.Slot, len(s.slots)),
		holds:    make(map[string]lock.Hold, len(s.holds)),
		bookings: make(map[string]booking.Booking, len(s.bookings)),
	}
	for k, v := range s.slots {
		snap.slots[k] = v
	}
	for k, v := range s.holds {
		snap.holds[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.slots = snap.slots
	s.holds = snap.holds
	s.bookings = snap.bookings
}

// AddSlot seeds a slot. Slots are created in bulk outside this service.
func (s *Store) AddSlot(sl slot.Slot) error {
	if err := sl.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.slots[sl.ID]; exists {
		return fmt.Errorf("slot %s already exists", sl.ID)
	}
	s.slots[sl.ID] = sl
	return nil
}

// CheckInvariants validates every slot and the pairing between locked
// slots and holds.
func (s *Store) CheckInvariants() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := make(map[string]lock.Hold, len(s.holds))
	for _, h := range s.holds {
		if _, dup := held[h.SlotID]; dup {
			return fmt.Errorf("%w: slot %s has more than one hold", slot.ErrInvariant, h.SlotID)
		}
		held[h.SlotID] = h
	}

	for _, sl := range s.slots {
		if err := sl.Validate(); err != nil {
			return err
		}

		h, hasHold := held[sl.ID]
		switch {
		case sl.Status == slot.StatusLocked && !hasHold:
			return fmt.Errorf("%w: locked slot %s has no hold", slot.ErrInvariant, sl.ID)
		case sl.Status == slot.StatusLocked && (h.HolderID != sl.Holder() || !h.ExpiresAt.Equal(*sl.LockExpiresAt)):
			return fmt.Errorf("%w: hold %s does not match slot %s", slot.ErrInvariant, h.ID, sl.ID)
		case sl.Status != slot.StatusLocked && hasHold:
			return fmt.Errorf("%w: %s slot %s still has hold %s", slot.ErrInvariant, sl.Status, sl.ID, h.ID)
		}

		if sl.Status == slot.StatusBooked {
			b, ok := s.bookings[*sl.BookingID]
			if !ok {
				return fmt.Errorf("%w: slot %s points at missing booking %s", slot.ErrInvariant, sl.ID, *sl.BookingID)
			}
			if b.Status != booking.StatusConfirmed {
				return fmt.Errorf("%w: slot %s booked by %s booking %s", slot.ErrInvariant, sl.ID, b.Status, b.ID)
			}
		}
	}
	return nil
}

func (s *Store) Slots() slot.Repository {
	return slotRepo{s}
}

func (s *Store) Holds() lock.Repository {
	return holdRepo{s}
}

func (s *Store) Bookings() booking.Repository {
	return bookingRepo{s}
}

func (s *Store) Channels() channel.Repository {
	return channelRepo{s}
}
