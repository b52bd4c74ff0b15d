package booking

import (
	"context"
	"errors"
	"fmt"

	"groundslot/internal/apperror"
	"groundslot/internal/clock"
	"groundslot/internal/db"
	"groundslot/internal/lock"
	"groundslot/internal/logger"
	"groundslot/internal/metrics"
	"groundslot/internal/notifier"
	"groundslot/internal/slot"

	"github.com/google/uuid"
)

type ConfirmInput struct {
	SlotIDs       []string
	CustomerName  string
	CustomerPhone string
	Amount        int64
	Channel       string
	// ExternalRef is the payment reference used to recognise redelivered
	// payment signals. Counter sales leave it empty.
	ExternalRef string
}

type Service interface {
	// Confirm turns the slots into a confirmed, paid booking, overriding any
	// hold on them. created is false when ExternalRef matched an existing
	// booking and nothing was written.
	Confirm(ctx context.Context, in ConfirmInput) (b *Booking, created bool, err error)
	GetBooking(ctx context.Context, id string) (*Booking, error)
}

type service struct {
	bookings  Repository
	slots     slot.Repository
	holds     lock.Repository
	tx        db.TxRunner
	publisher notifier.Publisher
	clock     clock.Clock
}

func NewService(bookings Repository, slots slot.Repository, holds lock.Repository, tx db.TxRunner, publisher notifier.Publisher, clk clock.Clock) Service {
	return &service{
		bookings:  bookings,
		slots:     slots,
		holds:     holds,
		tx:        tx,
		publisher: publisher,
		clock:     clk,
	}
}

func (s *service) Confirm(ctx context.Context, in ConfirmInput) (*Booking, bool, error) {
	if err := validateConfirm(in); err != nil {
		return nil, false, err
	}

	now := s.clock.Now()
	var (
		created  *Booking
		existing *Booking
		booked   []slot.Slot
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		created, existing, booked = nil, nil, nil

		if in.ExternalRef != "" {
			b, err := s.bookings.GetBookingByExternalRef(ctx, in.ExternalRef)
			switch {
			case err == nil:
				existing = b
				return nil
			case !errors.Is(err, ErrBookingNotFound):
				return apperror.Store("failed to look up payment reference", err)
			}
		}

		bookingID := uuid.NewString()
		facilityID := ""

		for _, id := range in.SlotIDs {
			current, err := s.slots.GetSlotByID(ctx, id)
			if err != nil {
				if errors.Is(err, slot.ErrSlotNotFound) {
					return apperror.NotFound(fmt.Sprintf("slot %s not found", id), err)
				}
				return apperror.Store("failed to load slot", err)
			}

			if facilityID == "" {
				facilityID = current.FacilityID
			} else if current.FacilityID != facilityID {
				return apperror.Validation("all slots must belong to the same facility")
			}

			switch current.Status {
			case slot.StatusBooked:
				return apperror.SlotBooked()
			case slot.StatusBlocked:
				return apperror.SlotBlocked()
			}

			sl, err := s.slots.MarkBooked(ctx, id, slot.BookedBy{
				BookingID:    bookingID,
				CustomerName: in.CustomerName,
				Channel:      in.Channel,
			})
			if err != nil {
				if errors.Is(err, slot.ErrPreconditionFailed) {
					return apperror.SlotBooked()
				}
				return apperror.Store("failed to book slot", err)
			}
			booked = append(booked, *sl)
		}

		if _, err := s.holds.DeleteHoldsBySlot(ctx, in.SlotIDs); err != nil {
			return apperror.Store("failed to clear holds", err)
		}

		b := &Booking{
			ID:            bookingID,
			FacilityID:    facilityID,
			SlotIDs:       append([]string(nil), in.SlotIDs...),
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			Amount:        in.Amount,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentPaid,
			Channel:       in.Channel,
			CreatedAt:     now,
		}
		if in.ExternalRef != "" {
			ref := in.ExternalRef
			b.ExternalRef = &ref
		}

		if err := s.bookings.CreateBooking(ctx, b); err != nil {
			if errors.Is(err, ErrDuplicateExternalRef) {
				return err
			}
			return apperror.Store("failed to create booking", err)
		}
		created = b
		return nil
	})

	if err != nil && in.ExternalRef != "" && lostRace(err) {
		// A concurrent delivery of the same payment may have committed first.
		b, getErr := s.bookings.GetBookingByExternalRef(ctx, in.ExternalRef)
		switch {
		case getErr == nil:
			existing, err = b, nil
		case errors.Is(err, ErrDuplicateExternalRef), !errors.Is(getErr, ErrBookingNotFound):
			return nil, false, apperror.Store("failed to load existing booking", getErr)
		}
	}
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		metrics.RecordDuplicateConfirmation()
		logger.Info("duplicate payment signal", "external_ref", in.ExternalRef, "booking_id", existing.ID)
		return existing, false, nil
	}

	metrics.RecordBookingConfirmed(created.Channel)
	for _, sl := range booked {
		s.publisher.Publish(notifier.NewEvent(notifier.EventSlotBooked, sl.ID, string(slot.StatusBooked), now).
			WithCustomer(created.CustomerName))
	}
	logger.Info("booking confirmed",
		"booking_id", created.ID,
		"slots", len(created.SlotIDs),
		"channel", created.Channel,
		"amount", created.Amount,
	)

	return created, true, nil
}

func lostRace(err error) bool {
	return errors.Is(err, ErrDuplicateExternalRef) || apperror.CodeOf(err) == apperror.CodeSlotBooked
}

func validateConfirm(in ConfirmInput) error {
	if len(in.SlotIDs) == 0 {
		return apperror.Validation("at least one slot id is required")
	}
	seen := make(map[string]struct{}, len(in.SlotIDs))
	for _, id := range in.SlotIDs {
		if id == "" {
			return apperror.Validation("slot ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return apperror.Validation(fmt.Sprintf("slot %s listed twice", id))
		}
		seen[id] = struct{}{}
	}
	if in.CustomerName == "" {
		return apperror.Validation("customerName is required")
	}
	if in.Amount < 0 {
		return apperror.Validation("amount must not be negative")
	}
	if in.Channel == "" {
		return apperror.Validation("channel is required")
	}
	return nil
}

func (s *service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	if id == "" {
		return nil, apperror.Validation("booking id is required")
	}

	b, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperror.NotFound("booking not found", err)
		}
		return nil, apperror.Store("failed to load booking", err)
	}
	return b, nil
}
