package claim_test

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
)

var _ = ginkgo.Describe("EventHandler", func() {
	ginkgo.It("handles claims entering review", func() {
		handler := claim.NewEventHandler(discardLogger())
		event := events.NewClaimSubmittedEvent(9, 1, decimal.RequireFromString("75.25"), 2, string(claim.StatusPendingApproval))

		gomega.Expect(handler.HandleClaimSubmitted(context.Background(), event)).To(gomega.Succeed())
	})

	ginkgo.It("rejects events of another type", func() {
		lg, rec := newRecordingLogger()
		handler := claim.NewEventHandler(lg)

		err := handler.HandleClaimSubmitted(context.Background(), events.BaseEvent{ID: "x", Type: "claim.other"})
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("expected ClaimSubmittedEvent")))
		gomega.Expect(rec.Messages()).To(gomega.ContainElement("invalid event type for claim submitted handler"))
	})

	ginkgo.It("subscribes to claim.submitted on the bus", func() {
		bus := events.NewEventBus(discardLogger())
		claim.NewEventHandler(discardLogger()).RegisterEventHandlers(bus)

		event := events.NewClaimSubmittedEvent(9, 1, decimal.NewFromInt(10), 1, string(claim.StatusPendingApproval))
		gomega.Expect(bus.PublishSync(context.Background(), event)).To(gomega.Succeed())
	})
})
