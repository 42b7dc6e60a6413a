package masterdata_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	masterdataDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/masterdata"
	"github.com/frahmantamala/expense-reimbursement/internal/masterdata"
)

type stubRepo struct {
	departments []*masterdataDatamodel.Department
	costCenters []*masterdataDatamodel.CostCenter
	projects    []*masterdataDatamodel.Project
	categories  []*masterdataDatamodel.ExpenseCategory
	projectsErr error
}

func (s *stubRepo) Departments(ctx context.Context) ([]*masterdataDatamodel.Department, error) {
	return s.departments, nil
}

func (s *stubRepo) CostCenters(ctx context.Context) ([]*masterdataDatamodel.CostCenter, error) {
	return s.costCenters, nil
}

func (s *stubRepo) Projects(ctx context.Context) ([]*masterdataDatamodel.Project, error) {
	return s.projects, s.projectsErr
}

func (s *stubRepo) Categories(ctx context.Context) ([]*masterdataDatamodel.ExpenseCategory, error) {
	return s.categories, nil
}

var _ = Describe("Masterdata Service", func() {
	var (
		repo    *stubRepo
		service *masterdata.Service
		slogger *slog.Logger
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = &stubRepo{
			departments: []*masterdataDatamodel.Department{
				{ID: 1, Code: "FIN", Name: "Finance", IsActive: true},
				{ID: 2, Code: "OLD", Name: "Legacy", IsActive: false},
			},
			costCenters: []*masterdataDatamodel.CostCenter{
				{ID: 1, Code: "CC-100", Name: "Head Office", IsActive: true},
			},
			categories: []*masterdataDatamodel.ExpenseCategory{
				{ID: 1, Name: "Travel", Description: "Business travel", IsActive: true},
			},
		}
		service = masterdata.NewService(repo, slogger)
	})

	It("offers only active values", func() {
		lookups, err := service.GetLookups(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(lookups.Departments).To(Equal([]masterdata.Option{{ID: 1, Code: "FIN", Name: "Finance"}}))
		Expect(lookups.CostCenters).To(HaveLen(1))
		Expect(lookups.Categories[0].Description).To(Equal("Business travel"))
	})

	It("returns empty lists rather than null for empty tables", func() {
		lookups, err := service.GetLookups(context.Background())
		Expect(err).NotTo(HaveOccurred())

		body, err := json.Marshal(lookups)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`"projects":[]`))
	})

	It("reports a repository failure as an internal error", func() {
		repo.projectsErr = errors.New("connection refused")

		_, err := service.GetLookups(context.Background())
		Expect(err).To(MatchError(ContainSubstring("failed to load projects")))
		Expect(err).To(MatchError(ContainSubstring("connection refused")))
	})

	Describe("Handler", func() {
		It("writes the lookups in the success envelope", func() {
			handler := masterdata.NewHandler(service, slogger)
			rec := httptest.NewRecorder()

			handler.GetLookups(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookups", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body struct {
				Success bool               `json:"success"`
				Data    masterdata.Lookups `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Success).To(BeTrue())
			Expect(body.Data.Departments).To(HaveLen(1))
		})

		It("writes the failure envelope when the service fails", func() {
			repo.projectsErr = errors.New("connection refused")
			handler := masterdata.NewHandler(service, slogger)
			rec := httptest.NewRecorder()

			handler.GetLookups(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookups", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
		})
	})
})
