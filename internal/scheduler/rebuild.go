package scheduler

import (
	"context"
	"errors"
	"time"

	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/zap"
)

// Rebuild recomputes every projection for days in [from, to] from the
// ledger. Daily scores are never touched. Failures are collected so one bad
// key does not stop the rest of the range.
func (s *Scheduler) Rebuild(ctx context.Context, from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidRange
	}
	from, to = calendar.Normalize(from), calendar.Normalize(to)
	if to.Before(from) {
		return ErrInvalidRange
	}
	rangeKey := calendar.Format(from) + ".." + calendar.Format(to)

	var errs error
	err := s.runStep(ctx, JobReconcileSummaries, rangeKey, func(ctx context.Context) error {
		keys, err := s.ledgerRepo.ListUserDays(ctx, s.db, from, to)
		if err != nil {
			return err
		}
		reconciled := 0
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.summarySvc.ReconcileDailySummary(ctx, key.UserID, key.Day); err != nil {
				s.logSchedulerError(ctx, "scheduler.summary.reconcile_failed", JobReconcileSummaries, err,
					zap.String("user_id", key.UserID),
					zap.String("day", calendar.Format(key.Day)),
				)
				errs = errors.Join(errs, err)
				continue
			}
			reconciled++
		}
		jobRunFromContext(ctx).AddProcessed(reconciled)
		obsmetrics.Scheduler().AddBatchProcessed(JobReconcileSummaries, "daily_summaries", reconciled)
		return nil
	})
	errs = errors.Join(errs, err)

	for _, day := range calendar.Range(from, to) {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		errs = errors.Join(errs, s.runDay(ctx, day))
	}
	return errs
}
