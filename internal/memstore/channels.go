package memstore

import (
	"context"
	"sort"
	"time"

	"groundslot/internal/channel"
)

type channelRepo struct {
	s *Store
}

func (r channelRepo) UpsertChannel(ctx context.Context, ch channel.Channel) (*channel.Channel, error) {
	defer r.s.acquire(ctx)()

	if existing, ok := r.s.channels[ch.ID]; ok {
		ch.CreatedAt = existing.CreatedAt
	} else if ch.CreatedAt.IsZero() {
		ch.CreatedAt = time.Now().UTC()
	}
	r.s.channels[ch.ID] = ch
	return &ch, nil
}

func (r channelRepo) GetChannelByID(ctx context.Context, id string) (*channel.Channel, error) {
	defer r.s.acquire(ctx)()

	ch, ok := r.s.channels[id]
	if !ok {
		return nil, channel.ErrChannelNotFound
	}
	return &ch, nil
}

func (r channelRepo) ListWithCallbacks(ctx context.Context) ([]channel.Channel, error) {
	defer r.s.acquire(ctx)()

	out := []channel.Channel{}
	for _, ch := range r.s.channels {
		if ch.Callback() != "" {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
