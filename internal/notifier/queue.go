package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultQueueKey = "groundslot:events"

var (
	ErrQueueFull  = errors.New("notification queue is full")
	ErrQueueEmpty = errors.New("notification queue is empty")
)

// Queue buffers events between producers and the dispatcher.
type Queue interface {
	Push(ctx context.Context, event Event) error
	// Pop waits up to the queue's poll interval and returns ErrQueueEmpty
	// when nothing arrived.
	Pop(ctx context.Context) (Event, error)
	Len(ctx context.Context) int64
}

type MemoryQueue struct {
	events chan Event
	poll   time.Duration
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{
		events: make(chan Event, size),
		poll:   2 * time.Second,
	}
}

func (q *MemoryQueue) Push(ctx context.Context, event Event) error {
	select {
	case q.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Event, error) {
	timer := time.NewTimer(q.poll)
	defer timer.Stop()

	select {
	case event := <-q.events:
		return event, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-timer.C:
		return Event{}, ErrQueueEmpty
	}
}

func (q *MemoryQueue) Len(ctx context.Context) int64 {
	return int64(len(q.events))
}

// RedisQueue is a list used LPUSH on the producer side and BRPOP on the
// consumer side, so events survive a process restart between the two.
type RedisQueue struct {
	redis   *redis.Client
	key     string
	poll    time.Duration
	maxSize int64
}

func NewRedisQueue(client *redis.Client, maxSize int) *RedisQueue {
	return &RedisQueue{
		redis:   client,
		key:     DefaultQueueKey,
		poll:    2 * time.Second,
		maxSize: int64(maxSize),
	}
}

func (q *RedisQueue) Push(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if q.maxSize > 0 {
		length, err := q.redis.LLen(ctx, q.key).Result()
		if err != nil {
			return fmt.Errorf("queue length: %w", err)
		}
		if length >= q.maxSize {
			return ErrQueueFull
		}
	}

	if err := q.redis.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("queue event: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (Event, error) {
	result, err := q.redis.BRPop(ctx, q.poll, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Event{}, ErrQueueEmpty
		}
		return Event{}, err
	}

	var event Event
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return Event{}, fmt.Errorf("bad event data: %w", err)
	}
	return event, nil
}

func (q *RedisQueue) Len(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, q.key).Result()
	return length
}
