package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"github.com/smallbiznis/streakscore/internal/clock"
	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	"github.com/smallbiznis/streakscore/internal/lock"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobDailyBatch          = "daily_batch"
	JobAggregateBranches   = "aggregate_branches"
	JobLeaderboardSnapshot = "leaderboard_snapshot"
	JobReconcileSummaries  = "reconcile_summaries"

	lockKeyPrefix = "streakscore:daily-batch:"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Locker         lock.Locker
	BranchSvc      branchdomain.Service
	LeaderboardSvc leaderboarddomain.Service
	SummarySvc     summarydomain.Service
	LedgerRepo     ledgerdomain.Repository
	Config         Config `optional:"true"`
}

type Scheduler struct {
	db             *gorm.DB
	log            *zap.Logger
	cfg            Config
	genID          *snowflake.Node
	clock          clock.Clock
	locker         lock.Locker
	branchSvc      branchdomain.Service
	leaderboardSvc leaderboarddomain.Service
	summarySvc     summarydomain.Service
	ledgerRepo     ledgerdomain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.BranchSvc == nil || p.LeaderboardSvc == nil || p.SummarySvc == nil || p.LedgerRepo == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	locker := p.Locker
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &Scheduler{
		db:             p.DB,
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            cfg,
		genID:          p.GenID,
		clock:          p.Clock,
		locker:         locker,
		branchSvc:      p.BranchSvc,
		leaderboardSvc: p.LeaderboardSvc,
		summarySvc:     p.SummarySvc,
		ledgerRepo:     p.LedgerRepo,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	day string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, day)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		schedMetrics.SetLastSuccess(name, s.clock.Now())
		return nil
	}

	// deadline is a soft timeout; the next run recomputes the day
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// DailyBatchJob processes the day before today in the configured timezone.
func (s *Scheduler) DailyBatchJob(ctx context.Context) error {
	today := calendar.In(s.clock.Now(), s.cfg.Location)
	return s.RunForDay(ctx, calendar.Previous(today))
}

// RunForDay aggregates branch scores and then rebuilds the leaderboard for
// day. Only one instance runs a given day at a time; a held lock skips the run.
func (s *Scheduler) RunForDay(ctx context.Context, day time.Time) error {
	if day.IsZero() {
		return ErrInvalidRange
	}
	day = calendar.Normalize(day)
	dayKey := calendar.Format(day)

	lease, ok, err := s.locker.TryLock(ctx, lockKeyPrefix+dayKey, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", JobDailyBatch, err)
	}
	if !ok {
		obsmetrics.Scheduler().IncBatchDeferred(JobDailyBatch, obsmetrics.SchedulerBatchDeferredReasonLockHeld)
		s.log.Info("daily batch already running elsewhere", zap.String("day", dayKey))
		return nil
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release daily batch lock", zap.String("day", dayKey), zap.Error(err))
		}
	}()

	return s.runDay(ctx, day)
}

func (s *Scheduler) runDay(ctx context.Context, day time.Time) error {
	dayKey := calendar.Format(day)

	err := s.runStep(ctx, JobAggregateBranches, dayKey, func(ctx context.Context) error {
		rows, err := s.branchSvc.AggregateBranchScores(ctx, day)
		if err != nil {
			return err
		}
		jobRunFromContext(ctx).AddProcessed(len(rows))
		obsmetrics.Scheduler().AddBatchProcessed(JobAggregateBranches, "branch_scores_daily", len(rows))
		return nil
	})
	if err != nil {
		// the snapshot reads branch rows; skip it rather than publish a stale ranking
		return err
	}

	return s.runStep(ctx, JobLeaderboardSnapshot, dayKey, func(ctx context.Context) error {
		snapshot, err := s.leaderboardSvc.BuildLeaderboardSnapshot(ctx, day)
		if err != nil {
			return err
		}
		jobRunFromContext(ctx).AddProcessed(len(snapshot.TopUsers))
		obsmetrics.Scheduler().AddBatchProcessed(JobLeaderboardSnapshot, "leaderboard_snapshots", 1)
		return nil
	})
}

// runStep runs a chained batch step. A step cut short by its deadline is
// still reported as failed so the next step does not build on partial rows.
func (s *Scheduler) runStep(ctx context.Context, name, dayKey string, fn func(ctx context.Context) error) error {
	var stepErr error
	err := s.runJob(ctx, name, dayKey, s.cfg.Timeout, func(ctx context.Context) error {
		stepErr = fn(ctx)
		return stepErr
	})
	if err != nil {
		return err
	}
	if stepErr != nil {
		return fmt.Errorf("%s: %w", name, stepErr)
	}
	return nil
}
