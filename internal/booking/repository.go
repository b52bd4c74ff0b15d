package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"groundslot/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrDuplicateExternalRef = errors.New("booking with this external reference already exists")
)

const bookingColumns = `id, facility_id, slot_ids, customer_name, customer_phone, amount, status, payment_status, channel, external_ref, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBooking(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := db.Conn(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.FacilityID, b.SlotIDs, b.CustomerName, b.CustomerPhone, b.Amount,
		b.Status, b.PaymentStatus, b.Channel, b.ExternalRef, b.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateExternalRef
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *repository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.getOne(ctx, "get booking", query, id)
}

func (r *repository) GetBookingByExternalRef(ctx context.Context, ref string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE external_ref = $1`
	return r.getOne(ctx, "get booking by external ref", query, ref)
}

func (r *repository) getOne(ctx context.Context, op, query string, arg interface{}) (*Booking, error) {
	var b Booking
	err := db.Conn(ctx, r.db).GetContext(ctx, &b, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}
