package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/queue"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	queuePkg "github.com/jwebster45206/personality-engine/pkg/queue"
	"github.com/spf13/cobra"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [command line]",
	Short: "Queue an event, health change or dialogue command for a worker",
	Example: `  personality enqueue ps_event player_comfort 0.8
  personality enqueue --tag camp_security_breach --impact 0.9
  personality enqueue --health damage --amount 0.3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		redisURL, _ := cmd.Flags().GetString("redis-url")
		characterStr, _ := cmd.Flags().GetString("character")
		tagName, _ := cmd.Flags().GetString("tag")
		impact, _ := cmd.Flags().GetFloat64("impact")
		tone, _ := cmd.Flags().GetFloat64("tone")
		healthKind, _ := cmd.Flags().GetString("health")
		amount, _ := cmd.Flags().GetFloat64("amount")

		characterID, err := uuid.Parse(characterStr)
		if err != nil {
			return fmt.Errorf("invalid character id: %w", err)
		}

		var req *queuePkg.Request
		switch {
		case tagName != "":
			tag, err := personality.ParseTag(tagName)
			if err != nil {
				return err
			}
			req = queuePkg.NewEventRequest(characterID, personality.NewEvent(tag).WithImpact(impact).WithTone(tone))
		case healthKind != "":
			kind, err := health.ParseEventKind(healthKind)
			if err != nil {
				return err
			}
			req = queuePkg.NewHealthRequest(characterID, health.Event{Kind: kind, Amount: amount, Source: "cli"})
		case len(args) > 0:
			req = queuePkg.NewCommandRequest(characterID, strings.Join(args, " "))
		default:
			return fmt.Errorf("nothing to enqueue: pass a command line, --tag or --health")
		}

		client, err := queue.NewClient(redisURL, cliLogger())
		if err != nil {
			return err
		}
		defer client.Close()

		if err := queue.NewEventQueue(client, cliLogger()).Enqueue(context.Background(), req); err != nil {
			return err
		}
		fmt.Printf("Enqueued %s request %s for %s\n", req.Type, req.RequestID, characterID)
		return nil
	},
}
