package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"groundslot/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const holdColumns = `id, slot_id, holder_id, expires_at, metadata, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHold(ctx context.Context, h *Hold) error {
	query := `
		INSERT INTO holds (id, slot_id, holder_id, expires_at, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query, h.ID, h.SlotID, h.HolderID, h.ExpiresAt, h.Metadata, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *repository) GetHold(ctx context.Context, id string) (*Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`
	return r.getOne(ctx, "get hold", query, id)
}

func (r *repository) GetHoldBySlot(ctx context.Context, slotID string) (*Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE slot_id = $1`
	return r.getOne(ctx, "get hold by slot", query, slotID)
}

func (r *repository) DeleteHold(ctx context.Context, id string) (*Hold, error) {
	query := `DELETE FROM holds WHERE id = $1 RETURNING ` + holdColumns
	return r.getOne(ctx, "delete hold", query, id)
}

func (r *repository) DeleteHoldsBySlot(ctx context.Context, slotIDs []string) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}

	query := `DELETE FROM holds WHERE slot_id = ANY($1)`

	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, pq.Array(slotIDs))
	if err != nil {
		return 0, fmt.Errorf("delete holds: %w", err)
	}
	return res.RowsAffected()
}

func (r *repository) DeleteOrphanedHolds(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM holds h
		WHERE h.expires_at <= $1
		AND NOT EXISTS (
			SELECT 1 FROM slots s
			WHERE s.id = h.slot_id AND s.status = 'locked' AND s.holder_id = h.holder_id
		)
	`

	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned holds: %w", err)
	}
	return res.RowsAffected()
}

func (r *repository) getOne(ctx context.Context, op, query string, arg interface{}) (*Hold, error) {
	var h Hold
	err := db.Conn(ctx, r.db).GetContext(ctx, &h, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &h, nil
}
