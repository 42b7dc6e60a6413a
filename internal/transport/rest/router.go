package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/masterdata"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/middleware"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes collects what RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	DB             *sql.DB
	Capabilities   CapabilityChecker
	AuthHandler    *auth.Handler
	ClaimHandler   *claim.Handler
	LookupHandler  *masterdata.Handler
	AllowedOrigins string
	OpenAPIPath    string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	healthHandler := NewHealthHandler(routes.DB, routes.Capabilities)

	// Apply global middleware
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(routes.Logger))
	router.Use(middleware.RecoveryMiddleware(routes.Logger))

	openAPIPath := routes.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if routes.AuthHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(routes.AuthHandler.AuthMiddleware)

			if routes.ClaimHandler != nil {
				pr.Route("/claims", func(cr chi.Router) {
					cr.Post("/", routes.ClaimHandler.SubmitClaim) // POST /claims
					cr.Get("/{id}", routes.ClaimHandler.GetClaim) // GET /claims/:id
				})
			}

			if routes.LookupHandler != nil {
				pr.Get("/lookups", routes.LookupHandler.GetLookups)
			}
		})
	})
}
