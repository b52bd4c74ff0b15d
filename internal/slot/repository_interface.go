package slot

import (
	"context"
	"time"
)

// Repository is the slot store. Every mutating method is a conditional write:
// it returns ErrPreconditionFailed when the row is not in the expected state.
type Repository interface {
	GetSlotByID(ctx context.Context, id string) (*Slot, error)
	ListSlotsByFacility(ctx context.Context, facilityID string, from, to *time.Time) ([]Slot, error)
	TryLock(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*Slot, error)
	TryLockExpired(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*Slot, error)
	Unlock(ctx context.Context, id, holderID string) (*Slot, error)
	MarkBooked(ctx context.Context, id string, by BookedBy) (*Slot, error)
	ReclaimExpired(ctx context.Context, now time.Time) ([]Reclaimed, error)
}
