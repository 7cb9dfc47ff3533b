package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/streakscore/internal/clock"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  memberdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  memberdomain.Repository
}

func New(p Params) memberdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Register creates the member or updates its name and branch assignment.
func (s *Service) Register(ctx context.Context, req memberdomain.RegisterRequest) (*memberdomain.Member, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, memberdomain.ErrInvalidUser
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, memberdomain.ErrInvalidName
	}

	var branch *string
	if req.BranchCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.BranchCode))
		if code == "" {
			return nil, memberdomain.ErrInvalidBranch
		}
		branch = &code
	}

	now := s.now()
	member := &memberdomain.Member{
		ID:          id,
		DisplayName: name,
		BranchCode:  branch,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, s.db, member); err != nil {
		return nil, err
	}

	s.log.Debug("member registered",
		zap.String("user_id", id),
		zap.String("branch_code", member.Branch()),
	)
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) Get(ctx context.Context, id string) (*memberdomain.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, memberdomain.ErrInvalidUser
	}
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, memberdomain.ErrNotFound
	}
	return member, nil
}

func (s *Service) ListByBranch(ctx context.Context, branchCode string) ([]memberdomain.Member, error) {
	code := strings.ToUpper(strings.TrimSpace(branchCode))
	if code == "" {
		return nil, memberdomain.ErrInvalidBranch
	}
	return s.repo.ListByBranch(ctx, s.db, &code)
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now().UTC()
}
