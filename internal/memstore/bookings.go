package memstore

import (
	"context"
	"fmt"

	"groundslot/internal/booking"

	"github.com/lib/pq"
)

type bookingRepo struct {
	s *Store
}

func (r bookingRepo) CreateBooking(ctx context.Context, b *booking.Booking) error {
	defer r.s.acquire(ctx)()

	if _, exists := r.s.bookings[b.ID]; exists {
		return fmt.Errorf("create booking: duplicate id %s", b.ID)
	}
	if ref := b.Ref(); ref != "" {
		for _, existing := range r.s.bookings {
			if existing.Ref() == ref {
				return booking.ErrDuplicateExternalRef
			}
		}
	}

	r.s.bookings[b.ID] = copyBooking(*b)
	return nil
}

func (r bookingRepo) GetBookingByID(ctx context.Context, id string) (*booking.Booking, error) {
	defer r.s.acquire(ctx)()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	out := copyBooking(b)
	return &out, nil
}

func (r bookingRepo) GetBookingByExternalRef(ctx context.Context, ref string) (*booking.Booking, error) {
	defer r.s.acquire(ctx)()

	for _, b := range r.s.bookings {
		if ref != "" && b.Ref() == ref {
			out := copyBooking(b)
			return &out, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func copyBooking(b booking.Booking) booking.Booking {
	b.SlotIDs = append(pq.StringArray(nil), b.SlotIDs...)
	return b
}
