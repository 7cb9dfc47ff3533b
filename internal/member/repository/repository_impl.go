package repository

import (
	"context"

	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() memberdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, m *memberdomain.Member) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "branch_code", "updated_at"}),
	}).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*memberdomain.Member, error) {
	var member memberdomain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_name, branch_code, created_at, updated_at
		 FROM members WHERE id = ?`,
		id,
	).Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == "" {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]memberdomain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []memberdomain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_name, branch_code, created_at, updated_at
		 FROM members WHERE id IN ?`,
		ids,
	).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) ListByBranch(ctx context.Context, db *gorm.DB, branchCode *string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	query := db.WithContext(ctx)
	var err error
	if branchCode == nil {
		err = query.Raw(
			`SELECT id, display_name, branch_code, created_at, updated_at
			 FROM members
			 WHERE branch_code IS NOT NULL AND branch_code <> ''
			 ORDER BY branch_code ASC, id ASC`,
		).Scan(&members).Error
	} else {
		err = query.Raw(
			`SELECT id, display_name, branch_code, created_at, updated_at
			 FROM members
			 WHERE branch_code = ?
			 ORDER BY id ASC`,
			*branchCode,
		).Scan(&members).Error
	}
	if err != nil {
		return nil, err
	}
	return members, nil
}
