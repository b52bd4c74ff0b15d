package booking

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is a finalized sale of one or more slots. Amount is in minor
// currency units and never changes after creation.
type Booking struct {
	ID            string         `db:"id" json:"id"`
	FacilityID    string         `db:"facility_id" json:"facilityId"`
	SlotIDs       pq.StringArray `db:"slot_ids" json:"slotIds" swaggertype:"array,string"`
	CustomerName  string         `db:"customer_name" json:"customerName"`
	CustomerPhone string         `db:"customer_phone" json:"customerPhone,omitempty"`
	Amount        int64          `db:"amount" json:"amount"`
	Status        Status         `db:"status" json:"status"`
	PaymentStatus PaymentStatus  `db:"payment_status" json:"paymentStatus"`
	Channel       string         `db:"channel" json:"channel"`
	ExternalRef   *string        `db:"external_ref" json:"externalRef,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

func (b *Booking) Ref() string {
	if b.ExternalRef == nil {
		return ""
	}
	return *b.ExternalRef
}

// ConfirmResponse wraps a booking with whether this call created it.
type ConfirmResponse struct {
	Booking *Booking `json:"booking"`
	Created bool     `json:"created"`
}
