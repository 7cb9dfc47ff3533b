package service

import (
	"context"
	"strings"
	"time"

	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       summarydomain.Repository
	LedgerRepo ledgerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       summarydomain.Repository
	ledgerRepo ledgerdomain.Repository
}

func New(p Params) summarydomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("summary.service"),
		repo:       p.Repo,
		ledgerRepo: p.LedgerRepo,
	}
}

// ReconcileDailySummary rebuilds the (user, day) summary from the ledger and
// overwrites the stored row. The result depends only on current ledger rows.
func (s *Service) ReconcileDailySummary(ctx context.Context, userID string, day time.Time) (*summarydomain.DailySummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, summarydomain.ErrInvalidUser
	}
	if day.IsZero() {
		return nil, summarydomain.ErrInvalidDay
	}
	day = calendar.Normalize(day)

	start := time.Now()
	metrics := obsmetrics.Scoring()
	defer func() { metrics.ObserveProjection(obsmetrics.ProjectionSummary, time.Since(start)) }()

	entries, err := s.ledgerRepo.ListEntries(ctx, s.db, userID, day, false)
	if err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionSummary)
		return nil, err
	}

	summary := summarydomain.Fold(userID, day, entries)
	if err := s.repo.Upsert(ctx, s.db, &summary); err != nil {
		metrics.IncProjectionFailure(obsmetrics.ProjectionSummary)
		return nil, err
	}

	s.log.Debug("daily summary reconciled",
		zap.String("user_id", userID),
		zap.String("day", calendar.Format(day)),
		zap.Int("total_count", summary.TotalCount),
	)
	return &summary, nil
}

func (s *Service) GetDailySummary(ctx context.Context, userID string, day time.Time) (*summarydomain.DailySummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, summarydomain.ErrInvalidUser
	}
	if day.IsZero() {
		return nil, summarydomain.ErrInvalidDay
	}

	summary, err := s.repo.FindByUserDay(ctx, s.db, userID, calendar.Normalize(day))
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, summarydomain.ErrNotFound
	}
	return summary, nil
}
