package claim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-reimbursement/internal"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
)

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SubmitCommand is one inbound submission after the upload step.
type SubmitCommand struct {
	UserID   int64
	Envelope Envelope
	Files    []UploadedFile
}

type Service struct {
	repo        RepositoryAPI
	persister   *ItemPersister
	reconciler  *Reconciler
	assembler   *Assembler
	publisher   EventPublisher
	readTimeout time.Duration
	logger      *slog.Logger
}

// NewService wires the pipeline. publisher may be nil.
func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		persister:  NewItemPersister(logger),
		reconciler: NewReconciler(repo, logger),
		assembler:  NewAssembler(repo, logger),
		publisher:  publisher,
		logger:     logger,
	}
}

// WithReadTimeout bounds the post-commit reconciliation and assembly reads.
func (s *Service) WithReadTimeout(d time.Duration) *Service {
	s.readTimeout = d
	return s
}

// Submit runs the whole submission in one transaction. The transaction is
// rolled back on every exit path that does not reach Commit, so the held
// connection always goes back to the pool.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*ClaimResponse, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, s.storeFailure(err, "begin transaction", cmd.UserID)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("claim transaction rollback failed", "error", rbErr, "user_id", cmd.UserID)
		}
	}()

	sub := Normalize(ctx, cmd.Envelope)
	if sub.FieldErr != nil {
		return nil, sub.FieldErr
	}

	items, shape := ValidateItemsShape(sub.Items)
	if !shape.Valid {
		return nil, shape.Err
	}
	amounts := ValidateAmounts(items)
	if !amounts.Valid {
		return nil, amounts.Err
	}
	status, err := ResolveStatus(sub.Status)
	if err != nil {
		return nil, err
	}

	header := &claimDatamodel.Claim{
		UserID:       cmd.UserID,
		DepartmentID: sub.DepartmentID.Ptr(),
		CostCenterID: sub.CostCenterID.Ptr(),
		ProjectID:    sub.ProjectID.Ptr(),
		Description:  sub.Description,
		TotalAmount:  amounts.Total,
		Status:       string(status),
	}
	if err := tx.CreateClaim(ctx, header); err != nil {
		return nil, s.storeFailure(err, "insert claim", cmd.UserID)
	}

	caps := Capabilities{Attachments: s.attachmentsAvailable(ctx, tx)}
	byItem := OrganizeAttachments(cmd.Files)

	rows, unrecorded, err := s.persister.PersistAll(ctx, tx, header.ID, items, byItem, cmd.UserID, caps.Attachments)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			s.logger.Warn("claim item rejected", "error", appErr, "user_id", cmd.UserID)
			return nil, appErr
		}
		return nil, s.storeFailure(err, "persist items", cmd.UserID)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.storeFailure(err, "commit", cmd.UserID)
	}
	committed = true

	readCtx, cancel := internal.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	total, adjusted, err := s.reconciler.Reconcile(readCtx, header.ID, amounts.Total)
	if err != nil {
		// the claim is committed; keep the declared total and report success
		s.logger.Error("claim total reconciliation failed", "error", err, "claim_id", header.ID)
		total = amounts.Total
	}
	header.TotalAmount = total

	resp := s.assembler.Assemble(readCtx, header.ID, caps).Response()
	if resp == nil {
		resp = fallbackResponse(header, rows)
	}

	resp.Unrecorded = unrecorded

	s.logger.Info("claim submitted",
		"claim_id", header.ID,
		"user_id", cmd.UserID,
		"items", len(rows),
		"unrecorded_files", len(unrecorded),
		"status", status,
		"total", total.StringFixed(2),
		"total_adjusted", adjusted)

	s.publishSubmitted(ctx, header, len(rows), total)

	return resp, nil
}

// GetClaim assembles the detail view of a claim owned by userID.
func (s *Service) GetClaim(ctx context.Context, claimID, userID int64) (*ClaimResponse, error) {
	caps := Capabilities{}
	if ok, err := s.repo.HasAttachmentsTable(ctx); err != nil {
		s.logger.Warn("attachments capability check failed", "error", err)
	} else {
		caps.Attachments = ok
	}

	detail := s.assembler.Assemble(ctx, claimID, caps)
	if detail.Header == nil {
		switch {
		case errors.Is(detail.Degraded, ErrClaimNotFound):
			return nil, internal.ErrClaimNotFound
		default:
			return nil, s.storeFailure(detail.Degraded, "load claim", userID)
		}
	}

	if detail.Header.UserID != userID {
		s.logger.Warn("unauthorized access to claim", "claim_id", claimID, "user_id", userID, "owner_id", detail.Header.UserID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return detail.Response(), nil
}

func (s *Service) attachmentsAvailable(ctx context.Context, tx TxAPI) bool {
	ok, err := tx.HasAttachmentsTable(ctx)
	if err != nil {
		s.logger.Warn("attachments capability check failed", "error", err)
		return false
	}
	return ok
}

// storeFailure maps a store error to the client-facing error: a missing
// core table is a 503, anything else a 500 that carries the cause.
func (s *Service) storeFailure(err error, op string, userID int64) error {
	if errors.Is(err, ErrRelationMissing) {
		s.logger.Error("claim tables are missing", "error", err, "op", op, "user_id", userID)
		return internal.NewServiceUnavailableError("database schema is not initialized", internal.ErrCodeSchemaNotInitialized, err)
	}
	s.logger.Error("claim store failure", "error", err, "op", op, "user_id", userID)
	return internal.NewInternalError(op+" failed", err)
}

func (s *Service) publishSubmitted(ctx context.Context, header *claimDatamodel.Claim, itemCount int, total decimal.Decimal) {
	if s.publisher == nil || Status(header.Status) != StatusPendingApproval {
		return
	}
	event := events.NewClaimSubmittedEvent(header.ID, header.UserID, total, itemCount, header.Status)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish claim submitted event", "error", err, "claim_id", header.ID)
	}
}

func fallbackResponse(header *claimDatamodel.Claim, rows []*claimDatamodel.Item) *ClaimResponse {
	items := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return &ClaimResponse{
		HeaderView:  headerFromRow(header),
		Items:       items,
		Attachments: []AttachmentView{},
	}
}
