package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeClaimSubmitted = "claim.submitted"
)

// ClaimSubmittedEvent is published once a claim entering review has been
// committed.
type ClaimSubmittedEvent struct {
	BaseEvent
	ClaimID   int64           `json:"claim_id"`
	UserID    int64           `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Status    string          `json:"status"`
}

func NewClaimSubmittedEvent(claimID, userID int64, total decimal.Decimal, itemCount int, status string) *ClaimSubmittedEvent {
	return &ClaimSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClaimSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"claim_id":   claimID,
				"user_id":    userID,
				"total":      total.StringFixed(2),
				"item_count": itemCount,
				"status":     status,
			},
		},
		ClaimID:   claimID,
		UserID:    userID,
		Total:     total,
		ItemCount: itemCount,
		Status:    status,
	}
}
