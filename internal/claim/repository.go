package claim

import (
	"context"

	"github.com/shopspring/decimal"

	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
)

// TxAPI is a transaction on a connection held exclusively by one submission
// until Commit or Rollback. Statements are issued one at a time.
type TxAPI interface {
	CreateClaim(ctx context.Context, c *claimDatamodel.Claim) error
	CreateItem(ctx context.Context, item *claimDatamodel.Item) error
	// CreateAttachment must leave the transaction usable when it fails.
	CreateAttachment(ctx context.Context, a *claimDatamodel.Attachment) error
	HasAttachmentsTable(ctx context.Context) (bool, error)
	Commit() error
	Rollback() error
}

// TotalStore is what the reconciler needs; it runs on the shared pool.
type TotalStore interface {
	SumItemAmounts(ctx context.Context, claimID int64) (decimal.Decimal, error)
	UpdateTotal(ctx context.Context, claimID int64, total decimal.Decimal) error
}

// DetailReader reads the joined claim view from the shared pool.
type DetailReader interface {
	FindHeader(ctx context.Context, claimID int64) (*HeaderView, error)
	FindItems(ctx context.Context, claimID int64) ([]ItemView, error)
	FindAttachments(ctx context.Context, claimID int64) ([]AttachmentView, error)
}

type RepositoryAPI interface {
	TotalStore
	DetailReader
	Begin(ctx context.Context) (TxAPI, error)
	HasAttachmentsTable(ctx context.Context) (bool, error)
}
