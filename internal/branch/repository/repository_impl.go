package repository

import (
	"context"
	"time"

	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() branchdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, rows []branchdomain.BranchScoreDaily) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_code"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_members",
			"active_members",
			"total_score",
			"avg_score",
			"branch_rank",
			"updated_at",
		}),
	}).Create(&rows).Error
}

func (r *repo) DeleteStale(ctx context.Context, db *gorm.DB, day time.Time, keep []string) error {
	query := db.WithContext(ctx).Where("day = ?", day)
	if len(keep) > 0 {
		query = query.Where("branch_code NOT IN ?", keep)
	}
	return query.Delete(&branchdomain.BranchScoreDaily{}).Error
}

func (r *repo) ListByDay(ctx context.Context, db *gorm.DB, day time.Time) ([]branchdomain.BranchScoreDaily, error) {
	var rows []branchdomain.BranchScoreDaily
	err := db.WithContext(ctx).Raw(
		`SELECT id, branch_code, day, total_members, active_members, total_score, avg_score, branch_rank, created_at, updated_at
		 FROM branch_scores_daily
		 WHERE day = ?
		 ORDER BY branch_rank ASC, branch_code ASC`,
		day,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
