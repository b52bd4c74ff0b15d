package notifier

import (
	"context"
	"testing"
	"time"

	"groundslot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesEvent(t *testing.T) {
	q := NewMemoryQueue(8)
	q.poll = 10 * time.Millisecond
	n := New(q)

	n.Publish(testEvent())
	n.Flush()

	event, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventSlotReleased, event.Type)
}

func TestPublishDropsWhenFull(t *testing.T) {
	q := NewMemoryQueue(1)
	n := New(q)
	before := testutil.ToFloat64(metrics.NotifierDroppedTotal)

	n.Publish(testEvent())
	n.Publish(testEvent())
	n.Publish(testEvent())
	n.Flush()

	assert.Equal(t, int64(1), q.Len(context.Background()))
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.NotifierDroppedTotal))
}

type blockingQueue struct {
	MemoryQueue
	release chan struct{}
}

func (q *blockingQueue) Push(ctx context.Context, event Event) error {
	select {
	case <-q.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPublishDoesNotWaitForQueue(t *testing.T) {
	q := &blockingQueue{release: make(chan struct{})}
	n := New(q)

	start := time.Now()
	n.Publish(testEvent())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(q.release)
	n.Flush()
}
