package notifier

import (
	"context"
	"sync"
	"time"

	"groundslot/internal/logger"
	"groundslot/internal/metrics"
)

// Notifier is the producer side of partner notification. It hands events to
// the queue on its own goroutine so callers never wait on the queue backend.
type Notifier struct {
	queue       Queue
	pushTimeout time.Duration
	inflight    sync.WaitGroup
}

func New(queue Queue) *Notifier {
	return &Notifier{
		queue:       queue,
		pushTimeout: 2 * time.Second,
	}
}

func (n *Notifier) Publish(event Event) {
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		n.enqueue(event)
	}()
}

func (n *Notifier) enqueue(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), n.pushTimeout)
	defer cancel()

	if err := n.queue.Push(ctx, event); err != nil {
		metrics.RecordNotifierDrop()
		logger.Warn("notification dropped",
			"event", event.Type,
			"slot_id", event.Data.SlotID,
			"error", err,
		)
		return
	}

	logger.Debug("notification queued", "event", event.Type, "slot_id", event.Data.SlotID)
}

// Flush waits for events handed to Publish to reach the queue.
func (n *Notifier) Flush() {
	n.inflight.Wait()
}
