package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
)

type stubUsers struct {
	user *auth.User
	err  error
}

func (s *stubUsers) FindActiveUser(ctx context.Context, userID int64) (*auth.User, error) {
	return s.user, s.err
}

var _ = ginkgo.Describe("AuthMiddleware", func() {
	var (
		generator *auth.JWTTokenGenerator
		seen      *auth.User
		next      http.Handler
		lg        *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		key := newKey()
		generator = auth.NewJWTTokenGenerator(key, &key.PublicKey, time.Minute)
		seen = nil
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.UserFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
	})

	serve := func(h *auth.Handler, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.AuthMiddleware(next).ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body
	}

	ginkgo.It("puts the token subject in the context", func() {
		token, err := generator.GenerateAccessToken(7, "seven@example.com")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		rec := serve(auth.NewHandler(generator, nil, lg), "Bearer "+token)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(seen).To(gomega.Equal(&auth.User{ID: 7, Email: "seven@example.com"}))
	})

	ginkgo.It("rejects a missing token with the failure envelope", func() {
		rec := serve(auth.NewHandler(generator, nil, lg), "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		body := decode(rec)
		gomega.Expect(body["success"]).To(gomega.BeFalse())
		gomega.Expect(body["code"]).To(gomega.Equal("INVALID_TOKEN"))
		gomega.Expect(seen).To(gomega.BeNil())
	})

	ginkgo.It("reports expired tokens distinctly", func() {
		generator.AccessTokenTTL = -time.Minute
		token, _ := generator.GenerateAccessToken(7, "seven@example.com")

		rec := serve(auth.NewHandler(generator, nil, lg), "Bearer "+token)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decode(rec)["code"]).To(gomega.Equal("TOKEN_EXPIRED"))
	})

	ginkgo.It("rejects inactive users", func() {
		token, _ := generator.GenerateAccessToken(7, "seven@example.com")
		users := &stubUsers{err: auth.ErrUserInactive}

		rec := serve(auth.NewHandler(generator, users, lg), "Bearer "+token)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decode(rec)["message"]).To(gomega.Equal("user is inactive"))
	})

	ginkgo.It("fails with 500 when the lookup breaks", func() {
		token, _ := generator.GenerateAccessToken(7, "seven@example.com")
		users := &stubUsers{err: errors.New("connection reset")}

		rec := serve(auth.NewHandler(generator, users, lg), "Bearer "+token)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
	})

	ginkgo.It("uses the stored user when a lookup is configured", func() {
		token, _ := generator.GenerateAccessToken(7, "old@example.com")
		users := &stubUsers{user: &auth.User{ID: 7, Email: "new@example.com"}}

		rec := serve(auth.NewHandler(generator, users, lg), "Bearer "+token)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(seen.Email).To(gomega.Equal("new@example.com"))
	})
})
