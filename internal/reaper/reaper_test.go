package reaper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"groundslot/internal/apperror"
	"groundslot/internal/clock"
	"groundslot/internal/lock"
	"groundslot/internal/memstore"
	"groundslot/internal/metrics"
	"groundslot/internal/notifier"
	"groundslot/internal/slot"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (r *recorder) Publish(e notifier.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t notifier.EventType) []notifier.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifier.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	clock  *clock.Manual
	events *recorder
	locks  lock.Service
	reaper *Reaper
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	store := memstore.New()
	for _, id := range ids {
		require.NoError(t, store.AddSlot(slot.Slot{
			ID:         id,
			FacilityID: "fac-1",
			Ground:     "Ground A",
			StartTime:  start.Add(6 * time.Hour),
			EndTime:    start.Add(7 * time.Hour),
			Status:     slot.StatusAvailable,
		}))
	}

	clk := clock.NewManual(start)
	events := &recorder{}
	return &fixture{
		store:  store,
		clock:  clk,
		events: events,
		locks:  lock.NewService(store.Holds(), store.Slots(), store, events, clk),
		reaper: New(store.Slots(), store.Holds(), store, events, clk),
	}
}

// A hold lapses unreleased and the sweep hands the slot back to everyone.
func TestScenarioExpiredHoldIsReclaimed(t *testing.T) {
	f := newFixture(t, "slot-1", "slot-2")
	ctx := context.Background()

	hold, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "playo", TTL: time.Minute})
	require.NoError(t, err)
	_, err = f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-2", ChannelID: "hudle", TTL: 10 * time.Minute})
	require.NoError(t, err)

	n, err := f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.clock.Advance(time.Minute)

	n, err = f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := f.store.Slots().GetSlotByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusAvailable, s.Status)
	assert.Nil(t, s.LockExpiresAt)

	_, err = f.locks.GetHold(ctx, hold.ID)
	assert.True(t, apperror.IsNotFound(err))

	other, err := f.store.Slots().GetSlotByID(ctx, "slot-2")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusLocked, other.Status)

	expired := f.events.ofType(notifier.EventSlotExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, "slot-1", expired[0].Data.SlotID)
	assert.Equal(t, "playo", expired[0].Data.Holder)
	assert.Equal(t, "available", expired[0].Data.Status)

	n, err = f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, f.events.ofType(notifier.EventSlotExpired), 1)

	next, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "district", TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "district", next.HolderID)
	assert.NoError(t, f.store.CheckInvariants())
}

// An acquire takes over a lapsed hold before the sweep reaches it.
func TestSweepAfterTakeoverKeepsNewHold(t *testing.T) {
	f := newFixture(t, "slot-1")
	ctx := context.Background()

	stale, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "playo", TTL: time.Minute})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)

	fresh, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "hudle", TTL: 5 * time.Minute})
	require.NoError(t, err)
	require.NotEqual(t, stale.ID, fresh.ID)

	n, err := f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := f.locks.GetHold(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "hudle", got.HolderID)

	_, err = f.locks.GetHold(ctx, stale.ID)
	assert.True(t, apperror.IsNotFound(err))

	s, err := f.store.Slots().GetSlotByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, slot.StatusLocked, s.Status)
	require.NotNil(t, s.HolderID)
	assert.Equal(t, "hudle", *s.HolderID)

	assert.Empty(t, f.events.ofType(notifier.EventSlotExpired))
	assert.NoError(t, f.store.CheckInvariants())
}

func TestSweepLeavesBookedSlotsAlone(t *testing.T) {
	f := newFixture(t, "slot-1")
	ctx := context.Background()

	_, err := f.store.Slots().MarkBooked(ctx, "slot-1", slot.BookedBy{BookingID: "b-1", CustomerName: "Asha", Channel: "desk"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	n, err := f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	s, _ := f.store.Slots().GetSlotByID(ctx, "slot-1")
	assert.Equal(t, slot.StatusBooked, s.Status)
}

func TestSweepRemovesOrphanedHolds(t *testing.T) {
	f := newFixture(t, "slot-1")
	ctx := context.Background()

	require.NoError(t, f.store.Holds().CreateHold(ctx, &lock.Hold{
		ID:        "stray",
		SlotID:    "slot-1",
		HolderID:  "playo",
		ExpiresAt: start.Add(-time.Second),
		CreatedAt: start.Add(-time.Minute),
	}))

	n, err := f.reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.store.Holds().GetHold(ctx, "stray")
	assert.ErrorIs(t, err, lock.ErrHoldNotFound)
	assert.Empty(t, f.events.ofType(notifier.EventSlotExpired))
}

func TestConcurrentSweepsReclaimOnce(t *testing.T) {
	f := newFixture(t, "slot-1", "slot-2", "slot-3")
	ctx := context.Background()

	for _, id := range []string{"slot-1", "slot-2", "slot-3"} {
		_, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: id, ChannelID: "playo", TTL: time.Minute})
		require.NoError(t, err)
	}
	f.clock.Advance(2 * time.Minute)

	second := New(f.store.Slots(), f.store.Holds(), f.store, f.events, f.clock)

	var wg sync.WaitGroup
	counts := make([]int, 2)
	for i, r := range []*Reaper{f.reaper, second} {
		wg.Add(1)
		go func(i int, r *Reaper) {
			defer wg.Done()
			n, err := r.Sweep(ctx)
			assert.NoError(t, err)
			counts[i] = n
		}(i, r)
	}
	wg.Wait()

	assert.Equal(t, 3, counts[0]+counts[1])
	assert.Len(t, f.events.ofType(notifier.EventSlotExpired), 3)
	assert.NoError(t, f.store.CheckInvariants())
}

type staticElector struct {
	leader bool
	err    error
}

func (e staticElector) Acquire(context.Context) (bool, error) { return e.leader, e.err }

func TestTickHonoursElector(t *testing.T) {
	f := newFixture(t, "slot-1")
	ctx := context.Background()

	_, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "playo", TTL: time.Minute})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	skipped := testutil.ToFloat64(metrics.ReaperRunsTotal.WithLabelValues("skipped"))
	follower := New(f.store.Slots(), f.store.Holds(), f.store, f.events, f.clock, WithElector(staticElector{leader: false}))
	follower.tick(ctx)
	assert.Equal(t, skipped+1, testutil.ToFloat64(metrics.ReaperRunsTotal.WithLabelValues("skipped")))

	s, _ := f.store.Slots().GetSlotByID(ctx, "slot-1")
	assert.Equal(t, slot.StatusLocked, s.Status)

	unsure := New(f.store.Slots(), f.store.Holds(), f.store, f.events, f.clock, WithElector(staticElector{err: errors.New("redis down")}))
	unsure.tick(ctx)

	s, _ = f.store.Slots().GetSlotByID(ctx, "slot-1")
	assert.Equal(t, slot.StatusAvailable, s.Status)
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(notifier.Event) { panic("boom") }

func TestTickSurvivesPanic(t *testing.T) {
	f := newFixture(t, "slot-1")
	ctx := context.Background()

	_, err := f.locks.Acquire(ctx, lock.AcquireInput{SlotID: "slot-1", ChannelID: "playo", TTL: time.Minute})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	before := testutil.ToFloat64(metrics.ReaperRunsTotal.WithLabelValues("panic"))
	r := New(f.store.Slots(), f.store.Holds(), f.store, panickingPublisher{}, f.clock)

	assert.NotPanics(t, func() { r.tick(ctx) })
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReaperRunsTotal.WithLabelValues("panic")))
}

func TestStartStopsOnCancel(t *testing.T) {
	f := newFixture(t, "slot-1")
	r := New(f.store.Slots(), f.store.Holds(), f.store, f.events, f.clock, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
