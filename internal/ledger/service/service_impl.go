package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/streakscore/internal/clock"
	"github.com/smallbiznis/streakscore/internal/config"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reconcileTimeout = 30 * time.Second

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Repo       ledgerdomain.Repository
	ScoreSvc   scoredomain.Service
	SummarySvc summarydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	async      bool
	repo       ledgerdomain.Repository
	scoreSvc   scoredomain.Service
	summarySvc summarydomain.Service
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		async:      p.Cfg.AsyncProjections,
		repo:       p.Repo,
		scoreSvc:   p.ScoreSvc,
		summarySvc: p.SummarySvc,
	}
}

func (s *Service) RecordEntry(ctx context.Context, req ledgerdomain.RecordEntryRequest) (*ledgerdomain.RecordEntryResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ledgerdomain.ErrInvalidUser
	}
	entry, err := s.buildEntry(userID, req.CategoryGroup, req.CategoryCode, req.Amount, req.Note, req.Day)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		return nil, err
	}

	resp := &ledgerdomain.RecordEntryResponse{Entry: *entry}
	score, err := s.scoreSvc.CalculateDailyScore(ctx, userID, entry.Day, scoredomain.RecordTypeRecord)
	if err != nil {
		s.log.Error("failed to score recorded entry",
			zap.String("user_id", userID),
			zap.String("day", calendar.Format(entry.Day)),
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	} else {
		resp.Score = score
	}

	s.reconcile(ctx, userID, entry.Day)
	return resp, nil
}

func (s *Service) VoidEntry(ctx context.Context, userID string, entryID snowflake.ID) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ledgerdomain.ErrInvalidUser
	}
	if entryID == 0 {
		return ledgerdomain.ErrInvalidEntry
	}

	entry, err := s.repo.FindByID(ctx, s.db, entryID)
	if err != nil {
		return err
	}
	if entry == nil || entry.UserID != userID {
		return ledgerdomain.ErrNotFound
	}
	if entry.Voided {
		return ledgerdomain.ErrAlreadyVoided
	}

	voided, err := s.repo.Void(ctx, s.db, entryID, s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !voided {
		return ledgerdomain.ErrAlreadyVoided
	}

	s.reconcile(ctx, userID, entry.Day)
	return nil
}

// CorrectEntry voids the original and inserts its replacement atomically.
// The replacement keeps a ParentID link; scores are not recomputed. When the
// replacement lands on another day that day is not scored either, so callers
// that want it scored must Checkin it themselves.
func (s *Service) CorrectEntry(ctx context.Context, req ledgerdomain.CorrectEntryRequest) (*ledgerdomain.LedgerEntry, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ledgerdomain.ErrInvalidUser
	}
	if req.EntryID == 0 {
		return nil, ledgerdomain.ErrInvalidEntry
	}
	replacement, err := s.buildEntry(userID, req.CategoryGroup, req.CategoryCode, req.Amount, req.Note, req.Day)
	if err != nil {
		return nil, err
	}
	parentID := req.EntryID
	replacement.ParentID = &parentID

	var original *ledgerdomain.LedgerEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, req.EntryID)
		if err != nil {
			return err
		}
		if found == nil || found.UserID != userID {
			return ledgerdomain.ErrNotFound
		}
		if found.Voided {
			return ledgerdomain.ErrAlreadyVoided
		}
		voided, err := s.repo.Void(ctx, tx, found.ID, replacement.CreatedAt)
		if err != nil {
			return err
		}
		if !voided {
			return ledgerdomain.ErrAlreadyVoided
		}
		original = found
		return s.repo.Insert(ctx, tx, replacement)
	})
	if err != nil {
		return nil, err
	}

	s.reconcile(ctx, userID, original.Day)
	if !original.Day.Equal(replacement.Day) {
		s.reconcile(ctx, userID, replacement.Day)
	}
	return replacement, nil
}

func (s *Service) Checkin(ctx context.Context, userID string, day time.Time) (*scoredomain.DailyScore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ledgerdomain.ErrInvalidUser
	}
	if day.IsZero() {
		return nil, ledgerdomain.ErrInvalidDay
	}
	return s.scoreSvc.CalculateDailyScore(ctx, userID, calendar.Normalize(day), scoredomain.RecordTypeCheckin)
}

func (s *Service) ListEntries(ctx context.Context, userID string, day time.Time, includeVoided bool) ([]ledgerdomain.LedgerEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ledgerdomain.ErrInvalidUser
	}
	if day.IsZero() {
		return nil, ledgerdomain.ErrInvalidDay
	}
	return s.repo.ListEntries(ctx, s.db, userID, calendar.Normalize(day), includeVoided)
}

func (s *Service) buildEntry(userID, group, code string, amount decimal.Decimal, note string, day time.Time) (*ledgerdomain.LedgerEntry, error) {
	categoryGroup := ledgerdomain.CategoryGroup(strings.ToUpper(strings.TrimSpace(group)))
	if !categoryGroup.Valid() {
		return nil, ledgerdomain.ErrInvalidCategoryGroup
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ledgerdomain.ErrInvalidCategoryCode
	}
	// amounts are signed; storage keeps four decimal places
	if !amount.Equal(amount.Round(4)) {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	if day.IsZero() {
		return nil, ledgerdomain.ErrInvalidDay
	}

	return &ledgerdomain.LedgerEntry{
		ID:            s.genID.Generate(),
		UserID:        userID,
		CategoryGroup: categoryGroup,
		CategoryCode:  code,
		Amount:        amount,
		Note:          strings.TrimSpace(note),
		Day:           calendar.Normalize(day),
		CreatedAt:     s.clock.Now().UTC(),
	}, nil
}

// reconcile refreshes the summary of a touched day. Failures are logged only;
// the ledger write has already committed.
func (s *Service) reconcile(ctx context.Context, userID string, day time.Time) {
	run := func(ctx context.Context) {
		if _, err := s.summarySvc.ReconcileDailySummary(ctx, userID, day); err != nil {
			s.log.Error("failed to reconcile daily summary",
				zap.String("user_id", userID),
				zap.String("day", calendar.Format(day)),
				zap.Error(err),
			)
		}
	}

	if !s.async {
		run(ctx)
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
		defer cancel()
		run(bgCtx)
	}()
}
