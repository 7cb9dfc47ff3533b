package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakscore/internal/clock"
	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"github.com/smallbiznis/streakscore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          scoredomain.Repository
	MilestoneRepo milestonedomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          scoredomain.Repository
	milestoneRepo milestonedomain.Repository
}

func New(p Params) scoredomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("score.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		milestoneRepo: p.MilestoneRepo,
	}
}

// ResolveStreak chains from the newest score before asOfDay. Only a score on
// the immediately preceding day extends the streak.
func (s *Service) ResolveStreak(ctx context.Context, userID string, asOfDay time.Time) (int, error) {
	userID, day, err := validateKey(userID, asOfDay)
	if err != nil {
		return 0, err
	}

	prev, err := s.repo.FindLatestBefore(ctx, s.db, userID, day)
	if err != nil {
		return 0, err
	}
	if prev == nil {
		return 1, nil
	}
	if calendar.IsNextDay(prev.Day, day) {
		return prev.CurrentStreak + 1, nil
	}
	return 1, nil
}

// CalculateDailyScore returns the stored score for the day, computing and
// inserting it first when none exists. Concurrent callers for the same key
// all observe the single row that won the insert.
func (s *Service) CalculateDailyScore(ctx context.Context, userID string, day time.Time, recordType scoredomain.RecordType) (*scoredomain.DailyScore, error) {
	userID, day, err := validateKey(userID, day)
	if err != nil {
		return nil, err
	}
	if !recordType.Valid() {
		return nil, scoredomain.ErrInvalidRecordType
	}

	existing, err := s.repo.FindByUserDay(ctx, s.db, userID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	s.warnIfOutOfOrder(ctx, userID, day)

	streak, err := s.ResolveStreak(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	streakScore := 0
	if streak > 0 {
		streakScore = 1
	}

	milestones, err := s.milestoneRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	bonus := milestonedomain.ResolveBonus(streak, milestones)
	details, err := json.Marshal(bonus.Details)
	if err != nil {
		return nil, err
	}

	score := &scoredomain.DailyScore{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Day:           day,
		BaseScore:     scoredomain.BaseScore,
		StreakScore:   streakScore,
		BonusScore:    bonus.Score,
		TotalScore:    scoredomain.BaseScore + streakScore + bonus.Score,
		CurrentStreak: streak,
		RecordType:    recordType,
		BonusDetails:  datatypes.JSON(details),
		CreatedAt:     s.clock.Now().UTC(),
	}

	metrics := obsmetrics.Scoring()
	if err := s.repo.Insert(ctx, s.db, score); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		winner, findErr := s.repo.FindByUserDay(ctx, s.db, userID, day)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, err
		}
		metrics.IncDuplicateResolved()
		s.log.Debug("daily score already computed by a concurrent caller",
			zap.String("user_id", userID),
			zap.String("day", calendar.Format(day)),
		)
		return winner, nil
	}

	metrics.IncScoreCreated(string(recordType))
	for _, d := range bonus.Details {
		metrics.IncMilestoneReached(strconv.Itoa(d.Milestone))
	}
	s.log.Info("daily score computed",
		zap.String("user_id", userID),
		zap.String("day", calendar.Format(day)),
		zap.String("record_type", string(recordType)),
		zap.Int("current_streak", streak),
		zap.Int("total_score", score.TotalScore),
	)
	return score, nil
}

func (s *Service) GetDailyScore(ctx context.Context, userID string, day time.Time) (*scoredomain.DailyScore, error) {
	userID, day, err := validateKey(userID, day)
	if err != nil {
		return nil, err
	}
	score, err := s.repo.FindByUserDay(ctx, s.db, userID, day)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, scoredomain.ErrNotFound
	}
	return score, nil
}

// warnIfOutOfOrder flags a score computed behind the user's newest one.
// Streaks of the later days were chained without this day and stay as they are.
func (s *Service) warnIfOutOfOrder(ctx context.Context, userID string, day time.Time) {
	latest, err := s.repo.FindLatest(ctx, s.db, userID)
	if err != nil || latest == nil {
		return
	}
	if latest.Day.After(day) {
		s.log.Warn("daily score computed out of calendar order; later streaks are stale",
			zap.String("user_id", userID),
			zap.String("day", calendar.Format(day)),
			zap.String("latest_day", calendar.Format(latest.Day)),
		)
	}
}

func validateKey(userID string, day time.Time) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, scoredomain.ErrInvalidUser
	}
	if day.IsZero() {
		return "", time.Time{}, scoredomain.ErrInvalidDay
	}
	return userID, calendar.Normalize(day), nil
}
