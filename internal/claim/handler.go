package claim

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/storage"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

type ServiceAPI interface {
	Submit(ctx context.Context, cmd SubmitCommand) (*ClaimResponse, error)
	GetClaim(ctx context.Context, claimID, userID int64) (*ClaimResponse, error)
}

// ReceiptStorage is satisfied by *storage.ReceiptStore.
type ReceiptStorage interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (storage.StoredFile, error)
	Remove(ctx context.Context, path string) error
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	receipts       ReceiptStorage
	maxUploadBytes int64
}

func NewHandler(svc ServiceAPI, receipts ReceiptStorage, maxUploadBytes int64, lg *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		receipts:       receipts,
		maxUploadBytes: maxUploadBytes,
	}
}

// SubmitClaim accepts either a JSON body or a multipart form. In a form the
// claim is read from the "data" field when present, otherwise from the
// individual text fields; files under item_<N>_attachments are stored
// before the pipeline runs.
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeInvalidToken, "authentication required")
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		env   Envelope
		files []UploadedFile
		err   error
	)
	switch mediaType {
	case "multipart/form-data":
		env, files, err = h.readMultipart(w, r)
	case "application/x-www-form-urlencoded":
		env, err = h.readForm(w, r)
	default:
		env, err = h.readJSON(w, r)
	}
	if err != nil {
		h.cleanup(r.Context(), files)
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Submit(r.Context(), SubmitCommand{
		UserID:   user.ID,
		Envelope: env,
		Files:    files,
	})
	if err != nil {
		h.cleanup(r.Context(), files)
		h.HandleServiceError(w, err)
		return
	}
	h.cleanup(r.Context(), resp.Unrecorded)

	h.WriteSuccess(w, http.StatusCreated, resp)
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, internal.ErrCodeInvalidToken, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, internal.ErrCodeValidationFailed, "invalid claim id")
		return
	}

	resp, err := h.Service.GetClaim(r.Context(), id, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, resp)
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request) (Envelope, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		return nil, internal.NewValidationError("request body is too large or unreadable", internal.ErrCodeInvalidUpload)
	}
	return RawEnvelope{Body: body}, nil
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (Envelope, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseForm(); err != nil {
		return nil, internal.NewValidationError("invalid form body", internal.ErrCodeInvalidUpload)
	}
	return envelopeFromFields(r.PostForm)
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (Envelope, []UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, nil, internal.NewValidationError("invalid multipart body", internal.ErrCodeInvalidUpload)
	}
	defer r.MultipartForm.RemoveAll()

	env, err := envelopeFromFields(r.MultipartForm.Value)
	if err != nil {
		return nil, nil, err
	}

	files, err := h.storeFiles(r.Context(), r.MultipartForm.File)
	if err != nil {
		return nil, files, err
	}
	return env, files, nil
}

// storeFiles writes every attachment part to receipt storage. Parts whose
// field name does not name an item are not stored.
func (h *Handler) storeFiles(ctx context.Context, parts map[string][]*multipart.FileHeader) ([]UploadedFile, error) {
	fields := make([]string, 0, len(parts))
	for field := range parts {
		if _, ok := AttachmentIndex(field); ok {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	var stored []UploadedFile
	for _, field := range fields {
		for _, fh := range parts[field] {
			if h.receipts == nil {
				return stored, internal.NewInternalError("receipt storage is not configured", nil)
			}
			saved, err := h.receipts.Save(ctx, fh)
			if err != nil {
				return stored, internal.NewInternalError("failed to store attachment", err)
			}
			stored = append(stored, UploadedFile{
				FieldName:    field,
				OriginalName: saved.OriginalName,
				StoredPath:   saved.Path,
				Size:         saved.Size,
				MimeType:     saved.MimeType,
			})
		}
	}
	return stored, nil
}

func (h *Handler) cleanup(ctx context.Context, files []UploadedFile) {
	if h.receipts == nil {
		return
	}
	for _, f := range files {
		if err := h.receipts.Remove(ctx, f.StoredPath); err != nil {
			logger.From(ctx).Warn("failed to remove stored receipt", "path", f.StoredPath, "error", err)
		}
	}
}

// envelopeFromFields re-encodes form text fields as a JSON object, one
// string per field. The payload field, when present, becomes the
// serialized variant with the object as its fallback.
func envelopeFromFields(values map[string][]string) (Envelope, error) {
	obj := make(map[string]string, len(values))
	for key, vals := range values {
		if key == PayloadField || len(vals) == 0 {
			continue
		}
		obj[key] = vals[0]
	}
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode form fields", err)
	}

	if data, ok := values[PayloadField]; ok && len(data) > 0 {
		return SerializedEnvelope{Data: data[0], Fallback: body}, nil
	}
	return RawEnvelope{Body: body}, nil
}
