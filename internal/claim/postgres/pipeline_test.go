package postgres_test

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/claim/postgres"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
)

var _ = ginkgo.Describe("submission pipeline on a real database", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *claim.Service
	)

	setup := func(models ...interface{}) {
		ctx = context.Background()
		gdb, sdb := openDB(models...)
		db = gdb
		service = claim.NewService(postgres.NewClaimRepository(gdb, sdb), nil, discardLogger())
	}

	count := func(model interface{}) int64 {
		var n int64
		gomega.Expect(db.Model(model).Count(&n).Error).To(gomega.Succeed())
		return n
	}

	submit := func(body string, files ...claim.UploadedFile) (*claim.ClaimResponse, error) {
		return service.Submit(ctx, claim.SubmitCommand{
			UserID:   9,
			Envelope: claim.RawEnvelope{Body: []byte(body)},
			Files:    files,
		})
	}

	ginkgo.Context("with the full schema", func() {
		ginkgo.BeforeEach(func() { setup(allModels()...) })

		ginkgo.It("stores a single item claim", func() {
			resp, err := submit(`{"items":[{"type":"Food","amount":100,"date":"2024-01-01"}]}`)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.TotalAmount.StringFixed(2)).To(gomega.Equal("100.00"))
			gomega.Expect(resp.Attachments).To(gomega.BeEmpty())

			var stored claimDatamodel.Claim
			gomega.Expect(db.First(&stored, resp.ID).Error).To(gomega.Succeed())
			gomega.Expect(stored.TotalAmount.StringFixed(2)).To(gomega.Equal("100.00"))
		})

		ginkgo.It("persists nothing when an item is incomplete", func() {
			_, err := submit(`{"items":[{"amount":100}]}`)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(appErr.Error()).To(gomega.ContainSubstring("required"))

			gomega.Expect(count(&claimDatamodel.Claim{})).To(gomega.BeZero())
			gomega.Expect(count(&claimDatamodel.Item{})).To(gomega.BeZero())
		})

		ginkgo.It("rolls back earlier items when a later one fails", func() {
			_, err := submit(`{"items":[
				{"type":"Food","amount":100,"date":"2024-01-01"},
				{"type":"Hotel","amount":50,"date":"not-a-date"}]}`)
			gomega.Expect(err).To(gomega.HaveOccurred())

			gomega.Expect(count(&claimDatamodel.Claim{})).To(gomega.BeZero())
			gomega.Expect(count(&claimDatamodel.Item{})).To(gomega.BeZero())
		})

		ginkgo.It("attaches a receipt to the item its field names", func() {
			resp, err := submit(`{"items":[
				{"type":"Food","amount":100,"date":"2024-01-01"},
				{"type":"Travel","amount":200,"date":"2024-01-02"}]}`,
				claim.UploadedFile{FieldName: "item_1_attachments", OriginalName: "taxi.jpg", StoredPath: "2024/01/t.jpg", Size: 3, MimeType: "image/jpeg"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.TotalAmount.StringFixed(2)).To(gomega.Equal("300.00"))
			gomega.Expect(resp.Items).To(gomega.HaveLen(2))
			gomega.Expect(resp.Attachments).To(gomega.HaveLen(1))

			food, travel := resp.Items[0], resp.Items[1]
			gomega.Expect(food.ExpenseType).To(gomega.Equal("Food"))
			gomega.Expect(resp.Attachments[0].ItemID).To(gomega.Equal(travel.ID))
			gomega.Expect(resp.Attachments[0].ItemID).NotTo(gomega.Equal(food.ID))
		})

		ginkgo.It("rejects an empty items array without inserting a header", func() {
			_, err := submit(`{"items":[]}`)
			gomega.Expect(err).To(gomega.MatchError("at least one item is required"))
			gomega.Expect(count(&claimDatamodel.Claim{})).To(gomega.BeZero())
		})

		ginkgo.It("stores the submitted intent as pending approval", func() {
			resp, err := submit(`{"status":"submitted","items":[{"type":"Food","amount":"12.34","date":"2024-01-01"}]}`)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			var stored claimDatamodel.Claim
			gomega.Expect(db.First(&stored, resp.ID).Error).To(gomega.Succeed())
			gomega.Expect(stored.Status).To(gomega.Equal("pending_approval"))
		})

		ginkgo.It("serves the stored claim to its owner", func() {
			resp, err := submit(`{"items":[{"type":"Food","amount":5,"date":"2024-01-01"}]}`)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			got, err := service.GetClaim(ctx, resp.ID, 9)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(got.Items).To(gomega.HaveLen(1))

			_, err = service.GetClaim(ctx, resp.ID, 10)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUnauthorizedAccess))
		})
	})

	ginkgo.Context("without the attachments table", func() {
		ginkgo.BeforeEach(func() { setup(coreModels()...) })

		ginkgo.It("still stores the claim and returns no attachments", func() {
			resp, err := submit(`{"items":[{"type":"Food","amount":100,"date":"2024-01-01"}]}`,
				claim.UploadedFile{FieldName: "item_0_attachments", OriginalName: "r.pdf", StoredPath: "2024/01/r.pdf"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Attachments).To(gomega.BeEmpty())
			gomega.Expect(count(&claimDatamodel.Item{})).To(gomega.Equal(int64(1)))
		})
	})

	ginkgo.Context("without the claim tables", func() {
		ginkgo.BeforeEach(func() { setup() })

		ginkgo.It("answers 503", func() {
			_, err := submit(`{"items":[{"type":"Food","amount":100,"date":"2024-01-01"}]}`)
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusServiceUnavailable))
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeSchemaNotInitialized))
		})
	})
})
