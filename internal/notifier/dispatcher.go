package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"groundslot/internal/channel"
	"groundslot/internal/logger"
	"groundslot/internal/metrics"
)

const (
	DefaultDeliveryTimeout = 5 * time.Second
	DefaultLaneSize        = 256

	resultDelivered = "delivered"
	resultFailed    = "failed"
)

type ChannelLister interface {
	ListWithCallbacks(ctx context.Context) ([]channel.Channel, error)
}

// Sink receives a copy of every dispatched event, next to the channel
// callbacks.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Dispatcher pops events off the queue and hands each delivery to a lane
// owned by its target, so a slow channel only delays its own deliveries.
type Dispatcher struct {
	queue    Queue
	channels ChannelLister
	client   *http.Client
	timeout  time.Duration
	workers  int
	laneSize int
	sinks    []Sink

	mu      sync.Mutex
	lanes   map[string]chan func(context.Context)
	laneCtx context.Context
	laneWG  sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithDeliveryTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func WithWorkers(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.workers = n
		}
	}
}

// WithLaneSize bounds how many deliveries may wait behind a slow target.
func WithLaneSize(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.laneSize = n
		}
	}
}

func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.client = client
	}
}

func WithSink(sink Sink) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.sinks = append(disp.sinks, sink)
	}
}

func NewDispatcher(queue Queue, channels ChannelLister, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:    queue,
		channels: channels,
		client:   &http.Client{},
		timeout:  DefaultDeliveryTimeout,
		workers:  1,
		laneSize: DefaultLaneSize,
		lanes:    make(map[string]chan func(context.Context)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start consumes the queue until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	logger.Info("notification dispatcher started", "workers", d.workers)

	d.mu.Lock()
	d.laneCtx = ctx
	d.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.run(ctx)
		}()
	}
	wg.Wait()
	d.laneWG.Wait()

	logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			d.processNext(ctx)
		}
	}
}

func (d *Dispatcher) processNext(ctx context.Context) {
	event, err := d.queue.Pop(ctx)
	if err != nil {
		if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
			return
		}
		logger.Error("failed to read notification queue", "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	metrics.SetNotifierQueueLength(d.queue.Len(ctx))
	d.enqueue(ctx, event)
}

// enqueue fans event out to the lanes of every sink and every channel with a
// callback without waiting for any delivery. A full lane drops the event for
// that target only.
func (d *Dispatcher) enqueue(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal event", "event", event.Type, "error", err)
		return
	}

	for i, sink := range d.sinks {
		d.submit(fmt.Sprintf("sink/%d", i), event, func(ctx context.Context) {
			d.write(ctx, sink, event)
		})
	}

	channels, err := d.channels.ListWithCallbacks(ctx)
	if err != nil {
		logger.Error("failed to load channels for notification", "event", event.Type, "error", err)
		metrics.RecordNotification(string(event.Type), resultFailed)
		return
	}

	for _, ch := range channels {
		d.submit("channel/"+ch.ID, event, func(ctx context.Context) {
			d.deliver(ctx, ch, event, body)
		})
	}
}

func (d *Dispatcher) submit(key string, event Event, job func(context.Context)) {
	lane := d.lane(key)
	if lane == nil {
		return
	}

	select {
	case lane <- job:
	default:
		metrics.RecordNotification(string(event.Type), resultFailed)
		logger.Warn("notification lane full, dropping event", "lane", key, "event", event.Type, "slot_id", event.Data.SlotID)
	}
}

// lane returns the delivery lane for key, starting its worker on first use.
func (d *Dispatcher) lane(key string) chan func(context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if lane, ok := d.lanes[key]; ok {
		return lane
	}
	if d.laneCtx == nil || d.laneCtx.Err() != nil {
		return nil
	}

	lane := make(chan func(context.Context), d.laneSize)
	d.lanes[key] = lane

	ctx := d.laneCtx
	d.laneWG.Add(1)
	go func() {
		defer d.laneWG.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-lane:
				job(ctx)
			}
		}
	}()
	return lane
}

// Dispatch delivers event to every channel with a callback and to every sink,
// concurrently, and returns once all attempts finished or timed out.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal event", "event", event.Type, "error", err)
		return
	}

	var wg sync.WaitGroup

	for _, sink := range d.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			d.write(ctx, sink, event)
		}(sink)
	}

	channels, err := d.channels.ListWithCallbacks(ctx)
	if err != nil {
		logger.Error("failed to load channels for notification", "event", event.Type, "error", err)
		metrics.RecordNotification(string(event.Type), resultFailed)
		wg.Wait()
		return
	}

	for _, ch := range channels {
		wg.Add(1)
		go func(ch channel.Channel) {
			defer wg.Done()
			d.deliver(ctx, ch, event, body)
		}(ch)
	}

	wg.Wait()
}

func (d *Dispatcher) write(ctx context.Context, sink Sink, event Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := sink.Write(ctx, event); err != nil {
		logger.Warn("event sink write failed", "event", event.Type, "slot_id", event.Data.SlotID, "error", err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ch channel.Channel, event Event, body []byte) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.post(ctx, ch.Callback(), event.Type, body)
	if err != nil {
		metrics.RecordNotification(string(event.Type), resultFailed)
		logger.Warn("notification delivery failed",
			"channel", ch.ID,
			"event", event.Type,
			"slot_id", event.Data.SlotID,
			"error", err,
		)
		return
	}

	metrics.RecordNotification(string(event.Type), resultDelivered)
	logger.Debug("notification delivered", "channel", ch.ID, "event", event.Type, "slot_id", event.Data.SlotID)
}

func (d *Dispatcher) post(ctx context.Context, url string, eventType EventType, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Groundslot-Event", string(eventType))

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
