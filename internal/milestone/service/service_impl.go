package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakscore/internal/clock"
	"github.com/smallbiznis/streakscore/internal/config"
	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    milestonedomain.Repository
	Scoring *config.ScoringConfigHolder `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    milestonedomain.Repository
	scoring *config.ScoringConfigHolder
}

func New(p Params) milestonedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("milestone.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		scoring: p.Scoring,
	}
}

func (s *Service) List(ctx context.Context) ([]milestonedomain.MilestoneConfig, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	defaults := s.scoring.Get().Milestones
	if len(defaults) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := s.now()
		for _, d := range defaults {
			if d.StreakDays <= 0 {
				return milestonedomain.ErrInvalidStreakDays
			}
			if d.BonusScore < 0 {
				return milestonedomain.ErrInvalidBonusScore
			}
			if err := s.repo.Insert(ctx, tx, &milestonedomain.MilestoneConfig{
				ID:         s.genID.Generate(),
				StreakDays: d.StreakDays,
				BonusScore: d.BonusScore,
				Name:       d.Name,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		s.log.Info("milestones seeded", zap.Int("count", inserted))
	}
	return inserted, nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}
