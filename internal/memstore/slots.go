package memstore

import (
	"context"
	"sort"
	"time"

	"groundslot/internal/slot"
)

type slotRepo struct {
	s *Store
}

func (r slotRepo) GetSlotByID(ctx context.Context, id string) (*slot.Slot, error) {
	defer r.s.acquire(ctx)()

	sl, ok := r.s.slots[id]
	if !ok {
		return nil, slot.ErrSlotNotFound
	}
	return &sl, nil
}

func (r slotRepo) ListSlotsByFacility(ctx context.Context, facilityID string, from, to *time.Time) ([]slot.Slot, error) {
	defer r.s.acquire(ctx)()

	out := []slot.Slot{}
	for _, sl := range r.s.slots {
		if sl.FacilityID != facilityID {
			continue
		}
		if from != nil && sl.StartTime.Before(*from) {
			continue
		}
		if to != nil && !sl.StartTime.Before(*to) {
			continue
		}
		out = append(out, sl)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].Ground < out[j].Ground
	})
	return out, nil
}

func (r slotRepo) TryLock(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*slot.Slot, error) {
	return r.update(ctx, id, func(sl slot.Slot) bool {
		return sl.Status == slot.StatusAvailable
	}, func(sl *slot.Slot) {
		lockSlot(sl, holderID, now, expiresAt)
	})
}

func (r slotRepo) TryLockExpired(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*slot.Slot, error) {
	return r.update(ctx, id, func(sl slot.Slot) bool {
		return sl.HoldExpired(now)
	}, func(sl *slot.Slot) {
		lockSlot(sl, holderID, now, expiresAt)
	})
}

func (r slotRepo) Unlock(ctx context.Context, id, holderID string) (*slot.Slot, error) {
	return r.update(ctx, id, func(sl slot.Slot) bool {
		return sl.Status == slot.StatusLocked && sl.Holder() == holderID
	}, clearHold)
}

func (r slotRepo) MarkBooked(ctx context.Context, id string, by slot.BookedBy) (*slot.Slot, error) {
	return r.update(ctx, id, func(sl slot.Slot) bool {
		return sl.Status == slot.StatusAvailable || sl.Status == slot.StatusLocked
	}, func(sl *slot.Slot) {
		clearHold(sl)
		bookingID, customer, channel := by.BookingID, by.CustomerName, by.Channel
		sl.Status = slot.StatusBooked
		sl.BookingID = &bookingID
		sl.CustomerName = &customer
		sl.Channel = &channel
	})
}

func (r slotRepo) ReclaimExpired(ctx context.Context, now time.Time) ([]slot.Reclaimed, error) {
	defer r.s.acquire(ctx)()

	reclaimed := []slot.Reclaimed{}
	for id, sl := range r.s.slots {
		if !sl.HoldExpired(now) {
			continue
		}
		previous := sl.Holder()
		clearHold(&sl)
		r.s.slots[id] = sl
		reclaimed = append(reclaimed, slot.Reclaimed{Slot: sl, PreviousHolder: previous})
	}

	sort.Slice(reclaimed, func(i, j int) bool {
		return reclaimed[i].ID < reclaimed[j].ID
	})
	return reclaimed, nil
}

// update applies mutate when pred holds for the current row, mirroring a
// conditional UPDATE ... RETURNING.
func (r slotRepo) update(ctx context.Context, id string, pred func(slot.Slot) bool, mutate func(*slot.Slot)) (*slot.Slot, error) {
	defer r.s.acquire(ctx)()

	sl, ok := r.s.slots[id]
	if !ok || !pred(sl) {
		return nil, slot.ErrPreconditionFailed
	}

	mutate(&sl)
	r.s.slots[id] = sl
	return &sl, nil
}

func lockSlot(sl *slot.Slot, holderID string, now, expiresAt time.Time) {
	holder, lockedAt, expiry := holderID, now, expiresAt
	sl.Status = slot.StatusLocked
	sl.HolderID = &holder
	sl.LockedAt = &lockedAt
	sl.LockExpiresAt = &expiry
}

func clearHold(sl *slot.Slot) {
	sl.Status = slot.StatusAvailable
	sl.HolderID = nil
	sl.LockedAt = nil
	sl.LockExpiresAt = nil
}
