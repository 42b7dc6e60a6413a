package claim

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

// Status is the stored workflow state of a claim.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPaid            Status = "paid"
)

// IntentSubmitted is the client-side intent that sends a claim to review.
const IntentSubmitted = "submitted"

var (
	// ErrRelationMissing marks store errors caused by a table that does not
	// exist yet (SQLSTATE 42P01).
	ErrRelationMissing = errors.New("relation does not exist")
	ErrClaimNotFound   = errors.New("claim not found")
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// ResolveStatus maps the caller's intent to the status stored on the claim.
// "submitted" becomes pending_approval, an empty intent becomes draft and any
// known status passes through unchanged. The match is case-sensitive.
func ResolveStatus(intent string) (Status, error) {
	if intent == "" {
		return StatusDraft, nil
	}
	if intent == IntentSubmitted {
		return StatusPendingApproval, nil
	}

	status := Status(intent)
	if !status.IsValid() {
		return "", internal.NewValidationFieldError("status",
			fmt.Sprintf("unknown status %q", intent), internal.ErrCodeInvalidStatus)
	}
	return status, nil
}
