package booking

import "context"

type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	GetBookingByExternalRef(ctx context.Context, ref string) (*Booking, error)
}
