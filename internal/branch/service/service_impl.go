package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"github.com/smallbiznis/streakscore/internal/clock"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       branchdomain.Repository
	MemberRepo memberdomain.Repository
	ScoreRepo  scoredomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       branchdomain.Repository
	memberRepo memberdomain.Repository
	scoreRepo  scoredomain.Repository
}

func New(p Params) branchdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("branch.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		memberRepo: p.MemberRepo,
		scoreRepo:  p.ScoreRepo,
	}
}

// AggregateBranchScores replaces every branch row of the day with a fresh
// aggregate of the day's scores.
func (s *Service) AggregateBranchScores(ctx context.Context, day time.Time) ([]branchdomain.BranchScoreDaily, error) {
	if day.IsZero() {
		return nil, branchdomain.ErrInvalidDay
	}
	day = calendar.Normalize(day)

	start := time.Now()
	metrics := obsmetrics.Scoring()
	defer func() { metrics.ObserveProjection(obsmetrics.ProjectionBranch, time.Since(start)) }()

	members, err := s.memberRepo.ListByBranch(ctx, s.db, nil)
	if err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionBranch)
		return nil, err
	}
	scores, err := s.scoreRepo.ListByDay(ctx, s.db, day)
	if err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionBranch)
		return nil, err
	}

	rows := branchdomain.Aggregate(day, members, scores)
	now := s.clock.Now().UTC()
	keep := make([]string, 0, len(rows))
	for i := range rows {
		rows[i].ID = s.genID.Generate()
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		keep = append(keep, rows[i].BranchCode)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteStale(ctx, tx, day, keep); err != nil {
			return err
		}
		return s.repo.Upsert(ctx, tx, rows)
	})
	if err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionBranch)
		return nil, err
	}

	s.log.Info("branch scores aggregated",
		zap.String("day", calendar.Format(day)),
		zap.Int("branches", len(rows)),
		zap.Int("members", len(members)),
		zap.Int("scores", len(scores)),
	)
	return rows, nil
}

func (s *Service) ListBranchScores(ctx context.Context, day time.Time) ([]branchdomain.BranchScoreDaily, error) {
	if day.IsZero() {
		return nil, branchdomain.ErrInvalidDay
	}
	return s.repo.ListByDay(ctx, s.db, calendar.Normalize(day))
}
