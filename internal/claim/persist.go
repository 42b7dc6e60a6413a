package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
)

var expenseDateLayouts = []string{"2006-01-02", time.RFC3339}

// ItemJob is everything needed to persist one line item.
type ItemJob struct {
	ClaimID int64
	Index   int
	Item    ItemInput
	Files   []UploadedFile
	UserID  int64
	// AttachmentsEnabled is the cached answer to "does the attachments
	// table exist" for this submission.
	AttachmentsEnabled bool
}

// ItemPersister writes line items and their attachments inside the
// submission's transaction. It reports failures and leaves rollback to the
// caller that owns the transaction.
type ItemPersister struct {
	logger *slog.Logger
}

func NewItemPersister(logger *slog.Logger) *ItemPersister {
	return &ItemPersister{logger: logger}
}

// Persist validates and inserts one item. Item-level problems come back as
// a 400 *internal.AppError; store failures are returned wrapped. The files
// that got no attachment row are returned so their blobs can be removed.
func (p *ItemPersister) Persist(ctx context.Context, tx TxAPI, job ItemJob) (*claimDatamodel.Item, []UploadedFile, error) {
	item := job.Item
	position := job.Index + 1

	amount, amountPresent, amountErr := parseAmount(item.Amount)
	if strings.TrimSpace(item.Type) == "" || !amountPresent || strings.TrimSpace(item.Date) == "" {
		return nil, nil, internal.NewValidationFieldError(
			fmt.Sprintf("items[%d]", job.Index),
			fmt.Sprintf("item %d: type, amount and date are required", position),
			internal.ErrCodeItemFieldMissing)
	}

	if amountErr != nil {
		return nil, nil, internal.NewValidationFieldError(
			fmt.Sprintf("items[%d].amount", job.Index),
			fmt.Sprintf("item %d: invalid amount %s: %v", position, amountText(item.Amount), amountErr),
			internal.ErrCodeInvalidAmount)
	}
	if !amount.IsPositive() {
		return nil, nil, internal.NewValidationFieldError(
			fmt.Sprintf("items[%d].amount", job.Index),
			fmt.Sprintf("item %d: amount must be a number greater than zero, got %s", position, amountText(item.Amount)),
			internal.ErrCodeInvalidAmount)
	}

	expenseDate, err := parseExpenseDate(item.Date)
	if err != nil {
		return nil, nil, internal.NewValidationFieldError(
			fmt.Sprintf("items[%d].date", job.Index),
			fmt.Sprintf("item %d: invalid date %q", position, item.Date),
			internal.ErrCodeInvalidDate)
	}

	row := &claimDatamodel.Item{
		ClaimID:       job.ClaimID,
		CategoryID:    item.CategoryID.Ptr(),
		ExpenseType:   strings.TrimSpace(item.Type),
		Amount:        amount,
		Description:   item.Description,
		ExpenseDate:   expenseDate,
		MealType:      item.MealType,
		TravelPurpose: item.TravelPurpose,
		LodgingCity:   item.LodgingCity,
	}
	if item.Headcount.Valid {
		headcount := int(item.Headcount.Value)
		row.Headcount = &headcount
	}

	if err := tx.CreateItem(ctx, row); err != nil {
		return nil, nil, fmt.Errorf("insert item %d: %w", position, err)
	}

	if !job.AttachmentsEnabled {
		return row, job.Files, nil
	}
	return row, p.persistAttachments(ctx, tx, job, row.ID), nil
}

// PersistAll persists items strictly in index order and stops at the first
// failure, returning it unchanged. Files addressed to an index with no item
// are returned as unrecorded along with the ones Persist could not record.
func (p *ItemPersister) PersistAll(ctx context.Context, tx TxAPI, claimID int64, items []ItemInput, files map[int][]UploadedFile, userID int64, attachmentsEnabled bool) ([]*claimDatamodel.Item, []UploadedFile, error) {
	rows := make([]*claimDatamodel.Item, 0, len(items))
	var unrecorded []UploadedFile
	for i, item := range items {
		row, skipped, err := p.Persist(ctx, tx, ItemJob{
			ClaimID:            claimID,
			Index:              i,
			Item:               item,
			Files:              files[i],
			UserID:             userID,
			AttachmentsEnabled: attachmentsEnabled,
		})
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
		unrecorded = append(unrecorded, skipped...)
	}

	indexes := make([]int, 0, len(files))
	for idx := range files {
		if idx < 0 || idx >= len(items) {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		unrecorded = append(unrecorded, files[idx]...)
	}
	return rows, unrecorded, nil
}

// persistAttachments is best effort: nothing here fails the item. It returns
// the files that have no attachment row.
func (p *ItemPersister) persistAttachments(ctx context.Context, tx TxAPI, job ItemJob, itemID int64) []UploadedFile {
	var unrecorded []UploadedFile
	for _, f := range job.Files {
		att := &claimDatamodel.Attachment{
			ClaimID:    job.ClaimID,
			ItemID:     itemID,
			FileName:   f.OriginalName,
			FilePath:   f.StoredPath,
			FileSize:   f.Size,
			MimeType:   f.MimeType,
			UploadedBy: job.UserID,
		}

		err := tx.CreateAttachment(ctx, att)
		if err == nil {
			continue
		}
		unrecorded = append(unrecorded, f)
		if errors.Is(err, ErrRelationMissing) {
			continue
		}
		p.logger.Warn("failed to record attachment",
			"error", err,
			"claim_id", job.ClaimID,
			"item_id", itemID,
			"file_name", f.OriginalName)
	}
	return unrecorded
}

func parseExpenseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range expenseDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
