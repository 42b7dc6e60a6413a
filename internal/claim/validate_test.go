package claim_test

import (
	"encoding/json"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/claim"
)

func amounts(raw ...string) []claim.ItemInput {
	items := make([]claim.ItemInput, len(raw))
	for i, r := range raw {
		if r != "" {
			items[i].Amount = json.RawMessage(r)
		}
	}
	return items
}

var _ = ginkgo.Describe("ValidateItemsShape", func() {
	ginkgo.DescribeTable("rejects anything but a non-empty array",
		func(raw string) {
			items, res := claim.ValidateItemsShape(json.RawMessage(raw))
			gomega.Expect(res.Valid).To(gomega.BeFalse())
			gomega.Expect(items).To(gomega.BeNil())
			gomega.Expect(res.Err.Error()).To(gomega.Equal("at least one item is required"))
			gomega.Expect(res.Err.StatusCode).To(gomega.Equal(400))
		},
		ginkgo.Entry("missing", ""),
		ginkgo.Entry("null", "null"),
		ginkgo.Entry("empty array", "[]"),
		ginkgo.Entry("object", `{"type":"Food"}`),
		ginkgo.Entry("string", `"items"`),
	)

	ginkgo.It("decodes the items", func() {
		items, res := claim.ValidateItemsShape(json.RawMessage(`[
			{"type":"Food","amount":100,"date":"2024-01-01","category_id":2,"meal_type":"lunch","headcount":"3"}
		]`))
		gomega.Expect(res.Valid).To(gomega.BeTrue())
		gomega.Expect(items).To(gomega.HaveLen(1))
		gomega.Expect(items[0].CategoryID.Value).To(gomega.Equal(int64(2)))
		gomega.Expect(*items[0].MealType).To(gomega.Equal("lunch"))
		gomega.Expect(items[0].Headcount.Value).To(gomega.Equal(int64(3)))
	})

	ginkgo.It("names a malformed item", func() {
		_, res := claim.ValidateItemsShape(json.RawMessage(`[{"type":"Food"}, 5]`))
		gomega.Expect(res.Valid).To(gomega.BeFalse())
		gomega.Expect(res.Err.Error()).To(gomega.HavePrefix("item 2 is malformed"))
	})
})

var _ = ginkgo.Describe("ValidateAmounts", func() {
	ginkgo.It("sums numbers and numeric strings exactly", func() {
		res := claim.ValidateAmounts(amounts(`100`, `"50.25"`, `0.1`, `0.2`))
		gomega.Expect(res.Valid).To(gomega.BeTrue())
		gomega.Expect(res.Total.Equal(decimal.RequireFromString("150.55"))).To(gomega.BeTrue())
	})

	ginkgo.It("counts missing and blank amounts as zero", func() {
		res := claim.ValidateAmounts(amounts(`100`, ``, `null`, `""`))
		gomega.Expect(res.Valid).To(gomega.BeTrue())
		gomega.Expect(res.Total.Equal(decimal.NewFromInt(100))).To(gomega.BeTrue())
	})

	ginkgo.DescribeTable("rejects invalid amounts",
		func(raw, message string) {
			res := claim.ValidateAmounts(amounts(`10`, raw))
			gomega.Expect(res.Valid).To(gomega.BeFalse())
			gomega.Expect(res.Err.Error()).To(gomega.Equal(message))
			gomega.Expect(res.Err.Code).To(gomega.Equal(internal.ErrCodeInvalidAmount))
		},
		ginkgo.Entry("word", `"abc"`, "invalid amount: abc"),
		ginkgo.Entry("negative number", `-5`, "invalid amount: -5"),
		ginkgo.Entry("negative string", `"-5"`, "invalid amount: -5"),
		ginkgo.Entry("boolean", `true`, "invalid amount: true"),
		ginkgo.Entry("sub-cent string", `"0.001"`, "invalid amount: 0.001"),
		ginkgo.Entry("sub-cent number", `12.345`, "invalid amount: 12.345"),
		ginkgo.Entry("too large for the column", `1e13`, "invalid amount: 1e13"),
	)

	ginkgo.It("accepts trailing zeros beyond the cents", func() {
		res := claim.ValidateAmounts(amounts(`"10.500"`))
		gomega.Expect(res.Valid).To(gomega.BeTrue())
		gomega.Expect(res.Total.StringFixed(2)).To(gomega.Equal("10.50"))
	})

	ginkgo.It("rejects a total the claim column cannot hold", func() {
		res := claim.ValidateAmounts(amounts(`999999999999.99`, `1`))
		gomega.Expect(res.Valid).To(gomega.BeFalse())
		gomega.Expect(res.Err.Code).To(gomega.Equal(internal.ErrCodeInvalidTotal))
	})

	ginkgo.It("requires a positive total", func() {
		res := claim.ValidateAmounts(amounts(`0`, `""`))
		gomega.Expect(res.Valid).To(gomega.BeFalse())
		gomega.Expect(res.Err.Error()).To(gomega.Equal("total must be greater than zero"))
		gomega.Expect(res.Err.Code).To(gomega.Equal(internal.ErrCodeInvalidTotal))
	})
})

var _ = ginkgo.Describe("ResolveStatus", func() {
	ginkgo.DescribeTable("maps intents",
		func(intent string, want claim.Status) {
			status, err := claim.ResolveStatus(intent)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(status).To(gomega.Equal(want))
		},
		ginkgo.Entry("submitted", "submitted", claim.StatusPendingApproval),
		ginkgo.Entry("empty", "", claim.StatusDraft),
		ginkgo.Entry("draft", "draft", claim.StatusDraft),
		ginkgo.Entry("pending_approval", "pending_approval", claim.StatusPendingApproval),
		ginkgo.Entry("approved", "approved", claim.StatusApproved),
		ginkgo.Entry("paid", "paid", claim.StatusPaid),
	)

	ginkgo.It("rejects unknown statuses, case-sensitively", func() {
		for _, intent := range []string{"Submitted", "archived"} {
			_, err := claim.ResolveStatus(intent)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidStatus))
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
		}
	})
})
