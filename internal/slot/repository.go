package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"groundslot/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound       = errors.New("slot not found")
	ErrPreconditionFailed = errors.New("slot not in expected state")
)

const slotColumns = `id, facility_id, ground, start_time, end_time, status, holder_id, locked_at, lock_expires_at, booking_id, customer_name, channel`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSlotByID(ctx context.Context, id string) (*Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE id = $1
	`

	var s Slot
	err := db.Conn(ctx, r.db).GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return &s, nil
}

func (r *repository) ListSlotsByFacility(ctx context.Context, facilityID string, from, to *time.Time) ([]Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE facility_id = $1
	`
	args := []interface{}{facilityID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}

	query += " ORDER BY start_time ASC, ground ASC"

	slots := []Slot{}
	err := db.Conn(ctx, r.db).SelectContext(ctx, &slots, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	return slots, nil
}

func (r *repository) TryLock(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*Slot, error) {
	query := `
		UPDATE slots
		SET status = 'locked', holder_id = $2, locked_at = $3, lock_expires_at = $4
		WHERE id = $1 AND status = 'available'
		RETURNING ` + slotColumns

	return r.conditional(ctx, "lock slot", query, id, holderID, now, expiresAt)
}

func (r *repository) TryLockExpired(ctx context.Context, id, holderID string, now, expiresAt time.Time) (*Slot, error) {
	query := `
		UPDATE slots
		SET status = 'locked', holder_id = $2, locked_at = $3, lock_expires_at = $4
		WHERE id = $1 AND status = 'locked' AND lock_expires_at <= $3
		RETURNING ` + slotColumns

	return r.conditional(ctx, "take over expired slot", query, id, holderID, now, expiresAt)
}

func (r *repository) Unlock(ctx context.Context, id, holderID string) (*Slot, error) {
	query := `
		UPDATE slots
		SET status = 'available', holder_id = NULL, locked_at = NULL, lock_expires_at = NULL
		WHERE id = $1 AND status = 'locked' AND holder_id = $2
		RETURNING ` + slotColumns

	return r.conditional(ctx, "unlock slot", query, id, holderID)
}

func (r *repository) MarkBooked(ctx context.Context, id string, by BookedBy) (*Slot, error) {
	query := `
		UPDATE slots
		SET status = 'booked', holder_id = NULL, locked_at = NULL, lock_expires_at = NULL,
			booking_id = $2, customer_name = $3, channel = $4
		WHERE id = $1 AND status IN ('available', 'locked')
		RETURNING ` + slotColumns

	return r.conditional(ctx, "mark slot booked", query, id, by.BookingID, by.CustomerName, by.Channel)
}

func (r *repository) ReclaimExpired(ctx context.Context, now time.Time) ([]Reclaimed, error) {
	query := `
		WITH expired AS (
			SELECT id, holder_id
			FROM slots
			WHERE status = 'locked' AND lock_expires_at <= $1
			ORDER BY lock_expires_at
			FOR UPDATE SKIP LOCKED
		)
		UPDATE slots s
		SET status = 'available', holder_id = NULL, locked_at = NULL, lock_expires_at = NULL
		FROM expired e
		WHERE s.id = e.id AND s.status = 'locked' AND s.lock_expires_at <= $1
		RETURNING s.id, s.facility_id, s.ground, s.start_time, s.end_time, s.status,
			s.holder_id, s.locked_at, s.lock_expires_at, s.booking_id, s.customer_name, s.channel,
			e.holder_id AS previous_holder
	`

	reclaimed := []Reclaimed{}
	err := db.Conn(ctx, r.db).SelectContext(ctx, &reclaimed, query, now)
	if err != nil {
		return nil, fmt.Errorf("reclaim expired slots: %w", err)
	}

	return reclaimed, nil
}

func (r *repository) conditional(ctx context.Context, op, query string, args ...interface{}) (*Slot, error) {
	var s Slot
	err := db.Conn(ctx, r.db).GetContext(ctx, &s, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreconditionFailed
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}
