package rest_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-reimbursement/internal/transport/rest"
)

type stubCapabilities struct{ attachments bool }

func (s stubCapabilities) HasAttachmentsTable(ctx context.Context) (bool, error) {
	return s.attachments, nil
}

func openSQL() *sql.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	sqlDB, err := db.DB()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return sqlDB
}

var _ = ginkgo.Describe("RegisterAllRoutes", func() {
	var (
		router *chi.Mux
		sqlDB  *sql.DB
	)

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	ginkgo.BeforeEach(func() {
		sqlDB = openSQL()
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Routes{
			DB:             sqlDB,
			Capabilities:   stubCapabilities{attachments: false},
			AllowedOrigins: "*",
			OpenAPIPath:    "../../../api/openapi.yml",
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	})

	ginkgo.It("answers the liveness probe", func() {
		rec := serve(http.MethodGet, "/api/v1/ping")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"OK"`))
	})

	ginkgo.It("reports the database and the attachments capability", func() {
		rec := serve(http.MethodGet, "/api/v1/health")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		var resp rest.HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp.Status).To(gomega.Equal(rest.HealthHealthy))
		gomega.Expect(resp.Components["postgres"].Details).To(gomega.HaveKeyWithValue("attachments", false))
	})

	ginkgo.It("reports unhealthy once the database is gone", func() {
		gomega.Expect(sqlDB.Close()).To(gomega.Succeed())

		rec := serve(http.MethodGet, "/api/v1/health")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
	})

	ginkgo.It("serves the OpenAPI document", func() {
		rec := serve(http.MethodGet, "/openapi.yml")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("Expense Reimbursement API"))
	})

	ginkgo.It("does not mount claim routes without their handlers", func() {
		rec := serve(http.MethodPost, "/api/v1/claims")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
	})
})
