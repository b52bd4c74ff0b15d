package lock

import (
	"context"
	"time"
)

type Repository interface {
	CreateHold(ctx context.Context, h *Hold) error
	GetHold(ctx context.Context, id string) (*Hold, error)
	GetHoldBySlot(ctx context.Context, slotID string) (*Hold, error)
	DeleteHold(ctx context.Context, id string) (*Hold, error)
	DeleteHoldsBySlot(ctx context.Context, slotIDs []string) (int64, error)
	// DeleteOrphanedHolds removes expired holds whose slot is no longer
	// locked by the same holder.
	DeleteOrphanedHolds(ctx context.Context, now time.Time) (int64, error)
}
