package memstore

import (
	"context"
	"fmt"
	"time"

	"groundslot/internal/lock"
	"groundslot/internal/slot"
)

type holdRepo struct {
	s *Store
}

func (r holdRepo) CreateHold(ctx context.Context, h *lock.Hold) error {
	defer r.s.acquire(ctx)()

	if _, exists := r.s.holds[h.ID]; exists {
		return fmt.Errorf("create hold: duplicate id %s", h.ID)
	}
	for _, existing := range r.s.holds {
		if existing.SlotID == h.SlotID {
			return fmt.Errorf("create hold: slot %s already has hold %s", h.SlotID, existing.ID)
		}
	}

	stored := *h
	stored.Metadata = h.Metadata.Clone()
	r.s.holds[h.ID] = stored
	return nil
}

func (r holdRepo) GetHold(ctx context.Context, id string) (*lock.Hold, error) {
	defer r.s.acquire(ctx)()

	h, ok := r.s.holds[id]
	if !ok {
		return nil, lock.ErrHoldNotFound
	}
	return copyHold(h), nil
}

func (r holdRepo) GetHoldBySlot(ctx context.Context, slotID string) (*lock.Hold, error) {
	defer r.s.acquire(ctx)()

	for _, h := range r.s.holds {
		if h.SlotID == slotID {
			return copyHold(h), nil
		}
	}
	return nil, lock.ErrHoldNotFound
}

func (r holdRepo) DeleteHold(ctx context.Context, id string) (*lock.Hold, error) {
	defer r.s.acquire(ctx)()

	h, ok := r.s.holds[id]
	if !ok {
		return nil, lock.ErrHoldNotFound
	}
	delete(r.s.holds, id)
	return copyHold(h), nil
}

func (r holdRepo) DeleteHoldsBySlot(ctx context.Context, slotIDs []string) (int64, error) {
	defer r.s.acquire(ctx)()

	wanted := make(map[string]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = struct{}{}
	}

	var n int64
	for id, h := range r.s.holds {
		if _, ok := wanted[h.SlotID]; ok {
			delete(r.s.holds, id)
			n++
		}
	}
	return n, nil
}

func (r holdRepo) DeleteOrphanedHolds(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.acquire(ctx)()

	all := make([]lock.Hold, 0, len(r.s.holds))
	for _, h := range r.s.holds {
		all = append(all, h)
	}

	var n int64
	for _, h := range lock.FindExpired(all, now) {
		sl, ok := r.s.slots[h.SlotID]
		if ok && sl.Status == slot.StatusLocked && sl.Holder() == h.HolderID {
			continue
		}
		delete(r.s.holds, h.ID)
		n++
	}
	return n, nil
}

func copyHold(h lock.Hold) *lock.Hold {
	h.Metadata = h.Metadata.Clone()
	return &h
}
