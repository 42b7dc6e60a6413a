package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
)

// ClaimRepository writes through gorm and reads the joined detail view
// through sqlx. Both share one connection pool.
type ClaimRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
}

func NewClaimRepository(db *gorm.DB, reader *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db, reader: reader}
}

var _ claim.RepositoryAPI = (*ClaimRepository)(nil)

// Begin checks a connection out of the pool for the transaction's lifetime.
func (r *ClaimRepository) Begin(ctx context.Context) (claim.TxAPI, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &claimTx{tx: tx}, nil
}

func (r *ClaimRepository) HasAttachmentsTable(ctx context.Context) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(&claimDatamodel.Attachment{}), nil
}

func (r *ClaimRepository) SumItemAmounts(ctx context.Context, claimID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&claimDatamodel.Item{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("claim_id = ?", claimID).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return sum, nil
}

func (r *ClaimRepository) UpdateTotal(ctx context.Context, claimID int64, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&claimDatamodel.Claim{}).
		Where("id = ?", claimID).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return claim.ErrClaimNotFound
	}
	return nil
}

const headerQuery = `
	SELECT c.id, c.user_id, c.department_id, d.name AS department_name,
		c.cost_center_id, cc.name AS cost_center_name,
		c.project_id, p.name AS project_name,
		c.description, c.total_amount, c.status, c.created_at, c.updated_at
	FROM reimbursement_claims c
	LEFT JOIN departments d ON d.id = c.department_id
	LEFT JOIN cost_centers cc ON cc.id = c.cost_center_id
	LEFT JOIN projects p ON p.id = c.project_id
	WHERE c.id = ?`

const itemsQuery = `
	SELECT i.id, i.claim_id, i.category_id, ec.name AS category_name,
		i.expense_type, i.amount, i.description, i.expense_date,
		i.meal_type, i.headcount, i.travel_purpose, i.lodging_city, i.created_at
	FROM reimbursement_items i
	LEFT JOIN expense_categories ec ON ec.id = i.category_id
	WHERE i.claim_id = ?
	ORDER BY i.id ASC`

const attachmentsQuery = `
	SELECT id, claim_id, item_id, file_name, file_path, file_size, mime_type, uploaded_by, created_at
	FROM reimbursement_attachments
	WHERE claim_id = ?
	ORDER BY id ASC`

func (r *ClaimRepository) FindHeader(ctx context.Context, claimID int64) (*claim.HeaderView, error) {
	var h claim.HeaderView
	if err := r.reader.GetContext(ctx, &h, r.reader.Rebind(headerQuery), claimID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, claim.ErrClaimNotFound
		}
		return nil, translateError(err)
	}
	return &h, nil
}

func (r *ClaimRepository) FindItems(ctx context.Context, claimID int64) ([]claim.ItemView, error) {
	items := []claim.ItemView{}
	if err := r.reader.SelectContext(ctx, &items, r.reader.Rebind(itemsQuery), claimID); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

func (r *ClaimRepository) FindAttachments(ctx context.Context, claimID int64) ([]claim.AttachmentView, error) {
	attachments := []claim.AttachmentView{}
	if err := r.reader.SelectContext(ctx, &attachments, r.reader.Rebind(attachmentsQuery), claimID); err != nil {
		return nil, translateError(err)
	}
	return attachments, nil
}

// claimTx wraps one gorm transaction.
type claimTx struct {
	tx         *gorm.DB
	savepoints int
}

func (t *claimTx) CreateClaim(ctx context.Context, c *claimDatamodel.Claim) error {
	return translateError(t.tx.WithContext(ctx).Create(c).Error)
}

func (t *claimTx) CreateItem(ctx context.Context, item *claimDatamodel.Item) error {
	return translateError(t.tx.WithContext(ctx).Create(item).Error)
}

// CreateAttachment runs inside its own savepoint. Postgres refuses further
// statements in a transaction after any failure, so a failed insert is rolled
// back to the savepoint and the transaction stays usable.
func (t *claimTx) CreateAttachment(ctx context.Context, a *claimDatamodel.Attachment) error {
	t.savepoints++
	name := fmt.Sprintf("attachment_%d", t.savepoints)

	db := t.tx.WithContext(ctx)
	if err := db.SavePoint(name).Error; err != nil {
		return translateError(err)
	}
	if err := db.Create(a).Error; err != nil {
		if rbErr := db.RollbackTo(name).Error; rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint: %v)", translateError(err), rbErr)
		}
		return translateError(err)
	}
	return nil
}

func (t *claimTx) HasAttachmentsTable(ctx context.Context) (bool, error) {
	return t.tx.WithContext(ctx).Migrator().HasTable(&claimDatamodel.Attachment{}), nil
}

func (t *claimTx) Commit() error {
	return translateError(t.tx.Commit().Error)
}

func (t *claimTx) Rollback() error {
	return t.tx.Rollback().Error
}
