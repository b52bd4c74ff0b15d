package channel

import "time"

// Channel is a sales channel that receives slot state changes at its
// callback URL. Channels without a callback are never notified.
type Channel struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CallbackURL *string   `db:"callback_url" json:"callbackUrl,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

func (c Channel) Callback() string {
	if c.CallbackURL == nil {
		return ""
	}
	return *c.CallbackURL
}
