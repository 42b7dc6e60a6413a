package claim_test

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-reimbursement/internal/claim"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
)

// fakeTx records statements in memory. Rows only become visible to the
// owning fakeRepo on Commit.
type fakeTx struct {
	repo *fakeRepo

	claims      []*claimDatamodel.Claim
	items       []*claimDatamodel.Item
	attachments []*claimDatamodel.Attachment

	claimErr      error
	itemErr       error
	failItemAt    int
	attachmentErr error

	committed  int
	rolledBack int
	statements int
}

func (t *fakeTx) CreateClaim(_ context.Context, c *claimDatamodel.Claim) error {
	t.statements++
	if t.claimErr != nil {
		return t.claimErr
	}
	c.ID = t.repo.nextID()
	t.claims = append(t.claims, c)
	return nil
}

func (t *fakeTx) CreateItem(_ context.Context, item *claimDatamodel.Item) error {
	t.statements++
	if t.itemErr != nil && len(t.items) == t.failItemAt {
		return t.itemErr
	}
	item.ID = t.repo.nextID()
	t.items = append(t.items, item)
	return nil
}

func (t *fakeTx) CreateAttachment(_ context.Context, a *claimDatamodel.Attachment) error {
	t.statements++
	if t.attachmentErr != nil {
		return t.attachmentErr
	}
	a.ID = t.repo.nextID()
	t.attachments = append(t.attachments, a)
	return nil
}

func (t *fakeTx) HasAttachmentsTable(context.Context) (bool, error) {
	return t.repo.attachmentsTable, nil
}

func (t *fakeTx) Commit() error {
	if t.repo.commitErr != nil {
		return t.repo.commitErr
	}
	t.committed++
	t.repo.claims = append(t.repo.claims, t.claims...)
	t.repo.items = append(t.repo.items, t.items...)
	t.repo.attachments = append(t.repo.attachments, t.attachments...)
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack++
	return nil
}

// fakeRepo is an in-memory claim store.
type fakeRepo struct {
	ids int64

	tx       *fakeTx
	beginErr error

	commitErr        error
	attachmentsTable bool

	claims      []*claimDatamodel.Claim
	items       []*claimDatamodel.Item
	attachments []*claimDatamodel.Attachment

	// sumOverride replaces the computed item sum when set.
	sumOverride *decimal.Decimal
	sumErr      error
	updates     []decimal.Decimal
	headerErr   error
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{attachmentsTable: true}
	r.tx = &fakeTx{repo: r, failItemAt: -1}
	return r
}

func (r *fakeRepo) nextID() int64 {
	r.ids++
	return r.ids
}

func (r *fakeRepo) Begin(context.Context) (claim.TxAPI, error) {
	if r.beginErr != nil {
		return nil, r.beginErr
	}
	return r.tx, nil
}

func (r *fakeRepo) HasAttachmentsTable(context.Context) (bool, error) {
	return r.attachmentsTable, nil
}

func (r *fakeRepo) SumItemAmounts(_ context.Context, claimID int64) (decimal.Decimal, error) {
	if r.sumErr != nil {
		return decimal.Zero, r.sumErr
	}
	if r.sumOverride != nil {
		return *r.sumOverride, nil
	}
	sum := decimal.Zero
	for _, it := range r.items {
		if it.ClaimID == claimID {
			sum = sum.Add(it.Amount)
		}
	}
	return sum, nil
}

func (r *fakeRepo) UpdateTotal(_ context.Context, claimID int64, total decimal.Decimal) error {
	for _, c := range r.claims {
		if c.ID == claimID {
			c.TotalAmount = total
			r.updates = append(r.updates, total)
			return nil
		}
	}
	return claim.ErrClaimNotFound
}

func (r *fakeRepo) FindHeader(_ context.Context, claimID int64) (*claim.HeaderView, error) {
	if r.headerErr != nil {
		return nil, r.headerErr
	}
	for _, c := range r.claims {
		if c.ID == claimID {
			return &claim.HeaderView{
				ID:          c.ID,
				UserID:      c.UserID,
				Description: c.Description,
				TotalAmount: c.TotalAmount,
				Status:      claim.Status(c.Status),
			}, nil
		}
	}
	return nil, claim.ErrClaimNotFound
}

func (r *fakeRepo) FindItems(_ context.Context, claimID int64) ([]claim.ItemView, error) {
	views := []claim.ItemView{}
	for _, it := range r.items {
		if it.ClaimID == claimID {
			views = append(views, claim.ItemView{
				ID:          it.ID,
				ClaimID:     it.ClaimID,
				ExpenseType: it.ExpenseType,
				Amount:      it.Amount,
				ExpenseDate: it.ExpenseDate,
			})
		}
	}
	return views, nil
}

func (r *fakeRepo) FindAttachments(_ context.Context, claimID int64) ([]claim.AttachmentView, error) {
	if !r.attachmentsTable {
		return nil, claim.ErrRelationMissing
	}
	views := []claim.AttachmentView{}
	for _, a := range r.attachments {
		if a.ClaimID == claimID {
			views = append(views, claim.AttachmentView{
				ID:       a.ID,
				ClaimID:  a.ClaimID,
				ItemID:   a.ItemID,
				FileName: a.FileName,
				FilePath: a.FilePath,
			})
		}
	}
	return views, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

var errBoom = errors.New("boom")
