package lock

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Hold is a channel's time-bound exclusive claim on one slot. It exists
// exactly while its slot is locked with the same holder and expiry.
type Hold struct {
	ID        string    `db:"id" json:"holdId"`
	SlotID    string    `db:"slot_id" json:"slotId"`
	HolderID  string    `db:"holder_id" json:"holderId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Metadata  Metadata  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Expired reports whether the hold lapsed at or before now.
func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// FindExpired returns the holds from holds that lapsed at or before now,
// preserving order.
func FindExpired(holds []Hold, now time.Time) []Hold {
	expired := make([]Hold, 0)
	for _, h := range holds {
		if h.Expired(now) {
			expired = append(expired, h)
		}
	}
	return expired
}

// Metadata is free-form string data a channel attaches to its hold.
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported type %T", src)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}

	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*m = out
	return nil
}

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var ErrHoldNotFound = errors.New("hold not found")
