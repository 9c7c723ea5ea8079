package scheduler

import (
	"context"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"go.uber.org/zap"
)

// ReconcileJobName identifies the balance reconciliation job
const ReconcileJobName = "balance_reconciliation"

// Reconciler recomputes house totals from the ledger
type Reconciler interface {
	Run(ctx context.Context) (*ledgerapp.ReconciliationReport, error)
}

// ReconcileJob runs balance reconciliation on a schedule
type ReconcileJob struct {
	reconciler Reconciler
	logger     *zap.Logger
}

// NewReconcileJob creates a ReconcileJob
func NewReconcileJob(reconciler Reconciler, logger *zap.Logger) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler, logger: logger}
}

// Name implements Job
func (j *ReconcileJob) Name() string { return ReconcileJobName }

// Run implements Job
func (j *ReconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.Run(ctx)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.Int("checked", report.Checked),
		zap.Int("failed", report.Failed),
		zap.Int("mismatches", len(report.Mismatches)),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	}
	if len(report.Mismatches) > 0 || report.Failed > 0 {
		j.logger.Warn("Reconciliation found discrepancies", fields...)
		return nil
	}
	j.logger.Info("Reconciliation clean", fields...)
	return nil
}
