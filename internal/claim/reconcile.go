package claim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// ReconcileTolerance is the largest drift between the declared and the
// persisted total that is left alone.
var ReconcileTolerance = decimal.New(1, -2)

// Reconciler restores total_amount = sum(item amounts) after commit.
type Reconciler struct {
	store  TotalStore
	logger *slog.Logger
}

func NewReconciler(store TotalStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile returns the persisted sum and whether the stored total had to be
// rewritten. No update is issued when the difference is within tolerance.
func (r *Reconciler) Reconcile(ctx context.Context, claimID int64, candidate decimal.Decimal) (decimal.Decimal, bool, error) {
	sum, err := r.store.SumItemAmounts(ctx, claimID)
	if err != nil {
		return candidate, false, fmt.Errorf("sum item amounts: %w", err)
	}

	if sum.Sub(candidate).Abs().LessThanOrEqual(ReconcileTolerance) {
		return sum, false, nil
	}

	if err := r.store.UpdateTotal(ctx, claimID, sum); err != nil {
		return candidate, false, fmt.Errorf("update claim total: %w", err)
	}

	r.logger.Info("claim total reconciled",
		"claim_id", claimID,
		"declared_total", candidate.StringFixed(2),
		"persisted_total", sum.StringFixed(2))

	return sum, true, nil
}
