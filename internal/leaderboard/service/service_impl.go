package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"github.com/smallbiznis/streakscore/internal/clock"
	"github.com/smallbiznis/streakscore/internal/config"
	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       leaderboarddomain.Repository
	ScoreRepo  scoredomain.Repository
	BranchRepo branchdomain.Repository
	MemberRepo memberdomain.Repository
	Scoring    *config.ScoringConfigHolder `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       leaderboarddomain.Repository
	scoreRepo  scoredomain.Repository
	branchRepo branchdomain.Repository
	memberRepo memberdomain.Repository
	scoring    *config.ScoringConfigHolder
}

func New(p Params) leaderboarddomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("leaderboard.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		scoreRepo:  p.ScoreRepo,
		branchRepo: p.BranchRepo,
		memberRepo: p.MemberRepo,
		scoring:    p.Scoring,
	}
}

// BuildLeaderboardSnapshot ranks every score of the day together with the
// day's branch aggregates and overwrites the stored snapshot.
func (s *Service) BuildLeaderboardSnapshot(ctx context.Context, day time.Time) (*leaderboarddomain.Snapshot, error) {
	if day.IsZero() {
		return nil, leaderboarddomain.ErrInvalidDay
	}
	day = calendar.Normalize(day)

	start := time.Now()
	metrics := obsmetrics.Scoring()
	defer func() { metrics.ObserveProjection(obsmetrics.ProjectionLeaderboard, time.Since(start)) }()

	snapshot, err := s.build(ctx, day)
	if err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionLeaderboard)
		return nil, err
	}

	users, err := json.Marshal(snapshot.TopUsers)
	if err != nil {
		return nil, err
	}
	branches, err := json.Marshal(snapshot.TopBranches)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	row := &leaderboarddomain.LeaderboardSnapshot{
		ID:          s.genID.Generate(),
		Day:         day,
		TopUsers:    datatypes.JSON(users),
		TopBranches: datatypes.JSON(branches),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, s.db, row); err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionLeaderboard)
		return nil, err
	}

	s.log.Info("leaderboard snapshot built",
		zap.String("day", calendar.Format(day)),
		zap.Int("users", len(snapshot.TopUsers)),
		zap.Int("branches", len(snapshot.TopBranches)),
	)
	return snapshot, nil
}

func (s *Service) build(ctx context.Context, day time.Time) (*leaderboarddomain.Snapshot, error) {
	snapshot := &leaderboarddomain.Snapshot{
		Day:         day,
		TopUsers:    []leaderboarddomain.UserRank{},
		TopBranches: []leaderboarddomain.BranchRank{},
	}

	scores, err := s.scoreRepo.ListByDay(ctx, s.db, day)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return snapshot, nil
	}

	ids := make([]string, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.UserID)
	}
	members, err := s.memberRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	snapshot.TopUsers = leaderboarddomain.RankUsers(scores, members)

	branches, err := s.branchRepo.ListByDay(ctx, s.db, day)
	if err != nil {
		return nil, err
	}
	snapshot.TopBranches = leaderboarddomain.ReshapeBranches(branches)
	return snapshot, nil
}

func (s *Service) GetLeaderboard(ctx context.Context, day time.Time, limit int) (*leaderboarddomain.Snapshot, error) {
	if day.IsZero() {
		return nil, leaderboarddomain.ErrInvalidDay
	}
	if limit < 0 {
		return nil, leaderboarddomain.ErrInvalidLimit
	}
	if limit == 0 {
		limit = s.scoring.Get().LeaderboardLimit
	}

	row, err := s.repo.FindByDay(ctx, s.db, calendar.Normalize(day))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, leaderboarddomain.ErrNotFound
	}

	snapshot, err := row.Snapshot()
	if err != nil {
		return nil, err
	}
	snapshot.Truncate(limit)
	return snapshot, nil
}
