package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// UserLookup confirms that the subject of a valid token still exists and
// is active.
type UserLookup interface {
	FindActiveUser(ctx context.Context, userID int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	tokens TokenValidator
	users  UserLookup
}

// NewHandler builds the identity middleware. users may be nil, in which case
// the token claims alone identify the caller.
func NewHandler(tokens TokenValidator, users UserLookup, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		tokens:      tokens,
		users:       users,
	}
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeInvalidToken, "missing authorization token")
			return
		}

		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeTokenExpired, "token expired")
				return
			}
			h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeInvalidToken, "invalid token")
			return
		}

		user := &User{ID: claims.UserID, Email: claims.Email}
		if h.users != nil {
			found, err := h.users.FindActiveUser(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserInactive) {
					h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeInvalidToken, err.Error())
					return
				}
				h.Logger.Error("auth middleware: user lookup failed", "user_id", claims.UserID, "error", err)
				h.WriteError(w, http.StatusInternalServerError, internal.ErrCodeInternal, "failed to load user")
				return
			}
			user = found
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "userID", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
