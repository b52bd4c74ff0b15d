package notifier

import "time"

type EventType string

const (
	EventSlotLocked   EventType = "slot_locked"
	EventSlotReleased EventType = "slot_released"
	EventSlotExpired  EventType = "slot_expired"
	EventSlotBooked   EventType = "slot_booked"
)

func (t EventType) Valid() bool {
	switch t {
	case EventSlotLocked, EventSlotReleased, EventSlotExpired, EventSlotBooked:
		return true
	}
	return false
}

type EventData struct {
	SlotID       string `json:"slotId"`
	Status       string `json:"status"`
	Holder       string `json:"holder,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// Event is the body POSTed to every channel callback.
type Event struct {
	Type      EventType `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

func NewEvent(eventType EventType, slotID, status string, at time.Time) Event {
	return Event{
		Type:      eventType,
		Timestamp: at.UTC(),
		Data: EventData{
			SlotID: slotID,
			Status: status,
		},
	}
}

func (e Event) WithHolder(holder string) Event {
	e.Data.Holder = holder
	return e
}

func (e Event) WithCustomer(name string) Event {
	e.Data.CustomerName = name
	return e
}

// Publisher accepts events for asynchronous delivery. Publish never blocks
// on delivery and never fails the caller.
type Publisher interface {
	Publish(event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(event Event)

func (f PublisherFunc) Publish(event Event) {
	f(event)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(Event) {})
