package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events through the registered handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var (
	eventData    string
	eventClaimID int64
	eventAmount  string
)

func publishTestEvent(eventType string) {
	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)
	claim.NewEventHandler(logger).RegisterEventHandlers(eventBus)

	var event events.Event
	switch eventType {
	case events.EventTypeClaimSubmitted:
		total, err := decimal.NewFromString(eventAmount)
		if err != nil {
			logger.Error("invalid --amount", "value", eventAmount, "error", err)
			return
		}
		event = events.NewClaimSubmittedEvent(eventClaimID, 1, total, 1, string(claim.StatusPendingApproval))
	default:
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.Info("test handler received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
		event = events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		}
	}

	logger.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.Publish(context.Background(), event); err != nil {
		logger.Error("failed to publish event", "error", err)
		return
	}

	eventBus.Wait()
	logger.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventClaimID, "claim-id", 1, "claim id for claim.submitted events")
	publishEventCmd.Flags().StringVar(&eventAmount, "amount", "100.00", "claim total for claim.submitted events")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
