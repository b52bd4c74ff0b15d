package channel

import "context"

type Repository interface {
	UpsertChannel(ctx context.Context, ch Channel) (*Channel, error)
	GetChannelByID(ctx context.Context, id string) (*Channel, error)
	ListWithCallbacks(ctx context.Context) ([]Channel, error)
}
