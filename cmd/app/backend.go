package main

import (
	"context"
	"fmt"
	"time"

	"groundslot/internal/booking"
	"groundslot/internal/channel"
	"groundslot/internal/config"
	"groundslot/internal/db"
	"groundslot/internal/lock"
	"groundslot/internal/logger"
	"groundslot/internal/memstore"
	"groundslot/internal/slot"

	"github.com/redis/go-redis/v9"
)

// backend is the set of repositories behind one store.
type backend struct {
	slots    slot.Repository
	holds    lock.Repository
	bookings booking.Repository
	channels channel.Repository
	tx       db.TxRunner
	mem      *memstore.Store
	close    func()
}

func openBackend(cfg *config.Config, migrate bool) (*backend, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		logger.Warn("using in-memory store; state is lost on exit")
		store := memstore.New()
		return &backend{
			slots:    store.Slots(),
			holds:    store.Holds(),
			bookings: store.Bookings(),
			channels: store.Channels(),
			tx:       store,
			mem:      store,
			close:    func() {},
		}, nil
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("Database connected")

	if migrate {
		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Migrations completed")
	}

	return &backend{
		slots:    slot.NewRepository(database),
		holds:    lock.NewRepository(database),
		bookings: booking.NewRepository(database),
		channels: channel.NewRepository(database),
		tx:       db.NewTransactor(database),
		close:    func() { _ = database.Close() },
	}, nil
}

// seedDemo fills an empty memory store with tomorrow's hourly slots for one
// facility so the service can be tried without a database.
func seedDemo(ctx context.Context, b *backend, now time.Time) error {
	if b.mem == nil {
		return fmt.Errorf("demo data needs the memory store")
	}

	day := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	for h := 6; h < 23; h++ {
		begin := day.Add(time.Duration(h) * time.Hour)
		s := slot.Slot{
			ID:         fmt.Sprintf("demo-%s-%02d", day.Format("20060102"), h),
			FacilityID: "demo-facility",
			Ground:     "Ground A",
			StartTime:  begin,
			EndTime:    begin.Add(time.Hour),
			Status:     slot.StatusAvailable,
		}
		if err := b.mem.AddSlot(s); err != nil {
			return err
		}
	}
	_, err := b.channels.UpsertChannel(ctx, channel.Channel{ID: "desk", Name: "Front desk", CreatedAt: now})
	return err
}

// openRedis returns nil when no address is configured.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
