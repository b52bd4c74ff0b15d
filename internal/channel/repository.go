package channel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrChannelNotFound = errors.New("channel not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertChannel(ctx context.Context, ch Channel) (*Channel, error) {
	query := `
		INSERT INTO channels (id, name, callback_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, callback_url = EXCLUDED.callback_url
		RETURNING id, name, callback_url, created_at
	`

	var saved Channel
	err := r.db.GetContext(ctx, &saved, query, ch.ID, ch.Name, ch.CallbackURL)
	if err != nil {
		return nil, fmt.Errorf("upsert channel: %w", err)
	}

	return &saved, nil
}

func (r *repository) GetChannelByID(ctx context.Context, id string) (*Channel, error) {
	query := `
		SELECT id, name, callback_url, created_at
		FROM channels
		WHERE id = $1
	`

	var ch Channel
	err := r.db.GetContext(ctx, &ch, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}

	return &ch, nil
}

func (r *repository) ListWithCallbacks(ctx context.Context) ([]Channel, error) {
	query := `
		SELECT id, name, callback_url, created_at
		FROM channels
		WHERE callback_url IS NOT NULL AND callback_url <> ''
		ORDER BY id
	`

	channels := []Channel{}
	err := r.db.SelectContext(ctx, &channels, query)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	return channels, nil
}
