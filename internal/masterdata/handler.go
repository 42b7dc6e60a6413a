package masterdata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-reimbursement/internal/transport"
)

type ServiceAPI interface {
	GetLookups(ctx context.Context) (*Lookups, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetLookups(w http.ResponseWriter, r *http.Request) {
	lookups, err := h.Service.GetLookups(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, lookups)
}
