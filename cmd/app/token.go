package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"groundslot/internal/auth"
	"groundslot/internal/channel"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		channelID string
		role      string
		name      string
		callback  string
		ttl       time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a development channel token",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch role {
			case auth.RolePartner, auth.RoleDesk, auth.RolePayments:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if name != "" || callback != "" {
				b, err := openBackend(cfg, false)
				if err != nil {
					return err
				}
				defer b.close()

				ch := channel.Channel{ID: channelID, Name: name, CreatedAt: time.Now().UTC()}
				if ch.Name == "" {
					ch.Name = channelID
				}
				if callback != "" {
					ch.CallbackURL = &callback
				}
				if _, err := b.channels.UpsertChannel(context.Background(), ch); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "registered channel %q\n", channelID)
			}

			token, err := auth.GenerateChannelToken(channelID, role, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, token)
			return nil
		},
	}

	c.Flags().StringVar(&channelID, "channel", "", "channel id")
	c.Flags().StringVar(&role, "role", auth.RolePartner, "partner, desk or payments")
	c.Flags().StringVar(&name, "name", "", "display name to register for the channel")
	c.Flags().StringVar(&callback, "callback", "", "notification callback URL to register for the channel")
	c.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	_ = c.MarkFlagRequired("channel")
	return c
}
