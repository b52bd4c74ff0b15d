package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"groundslot/internal/booking"
	"groundslot/internal/clock"
	"groundslot/internal/config"
	"groundslot/internal/lock"
	"groundslot/internal/logger"
	"groundslot/internal/notifier"
	"groundslot/internal/reaper"
	"groundslot/internal/server"
	"groundslot/internal/slot"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the expiry reaper and partner notifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg, seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed-demo", false, "fill the memory store with demo slots")
	return cmd
}

func serve(cfg *config.Config, seed bool) error {
	logger.Info("Starting groundslot", "env", cfg.Env, "store", cfg.StoreBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(cfg, true)
	if err != nil {
		return err
	}
	defer b.close()

	clk := clock.NewSystem()
	if seed {
		if err := seedDemo(ctx, b, clk.Now()); err != nil {
			return err
		}
		logger.Info("demo slots seeded", "facility", "demo-facility")
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var queue notifier.Queue
	if rdb != nil {
		queue = notifier.NewRedisQueue(rdb, cfg.NotifyQueueSize)
		logger.Info("notification queue on redis", "key", notifier.DefaultQueueKey)
	} else {
		queue = notifier.NewMemoryQueue(cfg.NotifyQueueSize)
	}

	dispatchOpts := []notifier.DispatcherOption{
		notifier.WithDeliveryTimeout(cfg.NotifyTimeout),
		notifier.WithWorkers(cfg.NotifyWorkers),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink := notifier.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer sink.Close()
		dispatchOpts = append(dispatchOpts, notifier.WithSink(sink))
		logger.Info("mirroring slot events to kafka", "topic", cfg.KafkaTopic)
	}
	dispatcher := notifier.NewDispatcher(queue, b.channels, dispatchOpts...)
	events := notifier.New(queue)

	reaperOpts := []reaper.Option{reaper.WithInterval(cfg.ReaperInterval)}
	if rdb != nil && cfg.ReaperLeaderLease > 0 {
		reaperOpts = append(reaperOpts, reaper.WithElector(reaper.NewRedisLease(rdb, cfg.ReaperLeaderLease)))
	}
	sweeper := reaper.New(b.slots, b.holds, b.tx, events, clk, reaperOpts...)

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		dispatcher.Start(ctx)
	}()
	go func() {
		defer workers.Done()
		sweeper.Start(ctx)
	}()

	srv := server.New(cfg, server.Services{
		Locks: lock.NewService(b.holds, b.slots, b.tx, events, clk,
			lock.WithDefaultTTL(cfg.HoldDefaultTTL),
			lock.WithMaxTTL(cfg.HoldMaxTTL),
		),
		Slots:    slot.NewService(b.slots),
		Bookings: booking.NewService(b.bookings, b.slots, b.holds, b.tx, events, clk),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	events.Flush()
	cancel()
	workers.Wait()

	logger.Info("Server stopped")
	return nil
}
