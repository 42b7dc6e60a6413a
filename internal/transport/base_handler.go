package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	h.WriteJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// WriteError writes the failure envelope
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, code internal.ErrorCode, message string) {
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "code", code, "message", message)
	} else {
		h.Logger.Warn("http error", "status", status, "code", code, "message", message)
	}
	h.WriteJSON(w, status, ErrorResponse{
		Success: false,
		Code:    string(code),
		Message: message,
	})
}

// HandleServiceError maps a service error to the failure envelope.
// Anything that is not an AppError is reported as a 500 with its message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		h.WriteError(w, status, appErr.Code, appErr.Error())
		return
	}
	h.WriteError(w, http.StatusInternalServerError, internal.ErrCodeInternal, err.Error())
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
