package slot

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusLocked    Status = "locked"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusLocked, StatusBooked, StatusBlocked:
		return true
	}
	return false
}

// Slot is one bookable window on one ground. The hold and booking fields are
// a projection of the owning Hold or Booking and are only written together
// with them.
type Slot struct {
	ID            string     `db:"id" json:"id"`
	FacilityID    string     `db:"facility_id" json:"facilityId"`
	Ground        string     `db:"ground" json:"ground"`
	StartTime     time.Time  `db:"start_time" json:"startTime"`
	EndTime       time.Time  `db:"end_time" json:"endTime"`
	Status        Status     `db:"status" json:"status"`
	HolderID      *string    `db:"holder_id" json:"holderId,omitempty"`
	LockedAt      *time.Time `db:"locked_at" json:"lockedAt,omitempty"`
	LockExpiresAt *time.Time `db:"lock_expires_at" json:"lockExpiresAt,omitempty"`
	BookingID     *string    `db:"booking_id" json:"bookingId,omitempty"`
	CustomerName  *string    `db:"customer_name" json:"customerName,omitempty"`
	Channel       *string    `db:"channel" json:"channel,omitempty"`
}

// Reclaimed is a slot the reaper returned to available, with the channel that
// held it.
type Reclaimed struct {
	Slot
	PreviousHolder string `db:"previous_holder"`
}

// BookedBy carries the sale fields written by MarkBooked.
type BookedBy struct {
	BookingID    string
	CustomerName string
	Channel      string
}

var ErrInvariant = errors.New("slot invariant violated")

func (s *Slot) Holder() string {
	if s.HolderID == nil {
		return ""
	}
	return *s.HolderID
}

// HoldExpired reports whether a locked slot's hold lapsed at or before now.
func (s *Slot) HoldExpired(now time.Time) bool {
	return s.Status == StatusLocked && s.LockExpiresAt != nil && !s.LockExpiresAt.After(now)
}

// HeldBy reports whether holder owns a live hold on the slot.
func (s *Slot) HeldBy(holder string, now time.Time) bool {
	return s.Status == StatusLocked && s.Holder() == holder && !s.HoldExpired(now)
}

func (s *Slot) Validate() error {
	if !s.StartTime.Before(s.EndTime) {
		return fmt.Errorf("%w: slot %s start %s is not before end %s", ErrInvariant, s.ID, s.StartTime, s.EndTime)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: slot %s has unknown status %q", ErrInvariant, s.ID, s.Status)
	}

	held := s.HolderID != nil && s.LockExpiresAt != nil
	noHold := s.HolderID == nil && s.LockExpiresAt == nil
	booked := s.BookingID != nil

	switch s.Status {
	case StatusLocked:
		if !held || booked {
			return fmt.Errorf("%w: locked slot %s needs holder and expiry and no booking", ErrInvariant, s.ID)
		}
	case StatusBooked:
		if !booked || !noHold {
			return fmt.Errorf("%w: booked slot %s needs a booking and no holder", ErrInvariant, s.ID)
		}
	case StatusAvailable:
		if !noHold || booked {
			return fmt.Errorf("%w: available slot %s must not carry holder or booking", ErrInvariant, s.ID)
		}
	}
	return nil
}
