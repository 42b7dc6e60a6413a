package claim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
)

// EventHandler reacts to claims entering the approval queue.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleClaimSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.ClaimSubmittedEvent)
	if !ok {
		h.logger.Error("invalid event type for claim submitted handler", "event_type", event.EventType())
		return fmt.Errorf("expected ClaimSubmittedEvent, got %T", event)
	}

	h.logger.Info("claim awaiting approval",
		"claim_id", submitted.ClaimID,
		"user_id", submitted.UserID,
		"total", submitted.Total.StringFixed(2),
		"items", submitted.ItemCount,
		"event_id", submitted.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeClaimSubmitted, h.HandleClaimSubmitted)

	h.logger.Info("claim event handlers registered",
		"handlers", []string{events.EventTypeClaimSubmitted})
}
