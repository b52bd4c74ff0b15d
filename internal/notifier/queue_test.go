package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() Event {
	return NewEvent(EventSlotReleased, "slot-1", "available", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)).
		WithHolder("hudle")
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)
	q.poll = 10 * time.Millisecond

	require.NoError(t, q.Push(ctx, testEvent()))
	assert.ErrorIs(t, q.Push(ctx, testEvent()), ErrQueueFull)
	assert.Equal(t, int64(1), q.Len(ctx))

	event, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hudle", event.Data.Holder)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestMemoryQueuePopCancelled(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisQueuePush(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(DefaultQueueKey).SetVal(3)
	mock.Regexp().ExpectLPush(DefaultQueueKey, `.*`).SetVal(4)

	q := NewRedisQueue(db, 1024)
	assert.NoError(t, q.Push(ctx, testEvent()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueuePushFull(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(DefaultQueueKey).SetVal(2)

	q := NewRedisQueue(db, 2)
	assert.ErrorIs(t, q.Push(ctx, testEvent()), ErrQueueFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueuePushError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(DefaultQueueKey, `.*`).SetErr(assert.AnError)

	q := NewRedisQueue(db, 0)
	assert.Error(t, q.Push(ctx, testEvent()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueuePop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	data, err := json.Marshal(testEvent())
	require.NoError(t, err)

	mock.ExpectBRPop(2*time.Second, DefaultQueueKey).SetVal([]string{DefaultQueueKey, string(data)})
	mock.ExpectBRPop(2*time.Second, DefaultQueueKey).SetErr(redis.Nil)

	q := NewRedisQueue(db, 1024)

	event, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventSlotReleased, event.Type)
	assert.Equal(t, "slot-1", event.Data.SlotID)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueueLen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(DefaultQueueKey).SetVal(5)

	q := NewRedisQueue(db, 1024)
	assert.Equal(t, int64(5), q.Len(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
