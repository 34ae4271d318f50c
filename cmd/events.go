/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/usersvc/apiserver/internal/mq"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with user change events",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log user change events as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := mq.Open(ctx, cfg.Events)
		if err != nil {
			return err
		}
		if events == nil {
			return errors.New("events are disabled; set EVENTS_BACKEND")
		}
		defer events.Close()

		log.Info().Str("channel", cfg.Events.Channel).Msg("watching user events")
		err = events.Subscribe(ctx, cfg.Events.Channel, func(_ context.Context, msg mq.Message) error {
			event, err := mq.DecodeUserEvent(msg)
			if err != nil {
				// Acked so an undecodable message is not redelivered.
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("skipping message")
				return nil
			}
			log.Info().
				Str("event_id", event.ID).
				Str("type", event.Type).
				Int("user_id", event.User.ID).
				Time("occurred_at", event.OccurredAt).
				Msg("user event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}
