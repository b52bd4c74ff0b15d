package main

import (
	"context"
	"fmt"
	"os"

	"groundslot/internal/clock"
	"groundslot/internal/logger"
	"groundslot/internal/notifier"
	"groundslot/internal/reaper"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry reaper pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			b, err := openBackend(cfg, false)
			if err != nil {
				return err
			}
			defer b.close()

			rdb, err := openRedis(ctx, cfg)
			if err != nil {
				return err
			}

			// Without a shared queue nobody would deliver the expiry events.
			var publisher notifier.Publisher = notifier.Discard
			var events *notifier.Notifier
			if rdb != nil {
				defer rdb.Close()
				events = notifier.New(notifier.NewRedisQueue(rdb, cfg.NotifyQueueSize))
				publisher = events
			} else {
				logger.Warn("REDIS_ADDR not set; expiry events from this sweep are not delivered")
			}

			n, err := reaper.New(b.slots, b.holds, b.tx, publisher, clock.NewSystem()).Sweep(ctx)
			if events != nil {
				events.Flush()
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "reclaimed %d slots\n", n)
			return nil
		},
	}
}
