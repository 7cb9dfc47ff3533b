package repository

import (
	"context"
	"time"

	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	"gorm.io/gorm"
)

const scoreColumns = `id, user_id, day, base_score, streak_score, bonus_score, total_score,
		        current_streak, record_type, bonus_details, created_at`

type repo struct{}

func Provide() scoredomain.Repository {
	return &repo{}
}

// Insert relies on ux_daily_scores_user_day; a second insert for the same
// key fails with a unique violation.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *scoredomain.DailyScore) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO daily_scores (`+scoreColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		s.Day,
		s.BaseScore,
		s.StreakScore,
		s.BonusScore,
		s.TotalScore,
		s.CurrentStreak,
		s.RecordType,
		s.BonusDetails,
		s.CreatedAt,
	).Error
}

func (r *repo) FindByUserDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*scoredomain.DailyScore, error) {
	var score scoredomain.DailyScore
	err := db.WithContext(ctx).Raw(
		`SELECT `+scoreColumns+`
		 FROM daily_scores
		 WHERE user_id = ? AND day = ?`,
		userID,
		day,
	).Scan(&score).Error
	return found(&score, err)
}

func (r *repo) FindLatestBefore(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*scoredomain.DailyScore, error) {
	var score scoredomain.DailyScore
	err := db.WithContext(ctx).Raw(
		`SELECT `+scoreColumns+`
		 FROM daily_scores
		 WHERE user_id = ? AND day < ?
		 ORDER BY day DESC
		 LIMIT 1`,
		userID,
		day,
	).Scan(&score).Error
	return found(&score, err)
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, userID string) (*scoredomain.DailyScore, error) {
	var score scoredomain.DailyScore
	err := db.WithContext(ctx).Raw(
		`SELECT `+scoreColumns+`
		 FROM daily_scores
		 WHERE user_id = ?
		 ORDER BY day DESC
		 LIMIT 1`,
		userID,
	).Scan(&score).Error
	return found(&score, err)
}

func (r *repo) ListByDay(ctx context.Context, db *gorm.DB, day time.Time) ([]scoredomain.DailyScore, error) {
	var scores []scoredomain.DailyScore
	err := db.WithContext(ctx).Raw(
		`SELECT `+scoreColumns+`
		 FROM daily_scores
		 WHERE day = ?
		 ORDER BY user_id ASC`,
		day,
	).Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func found(score *scoredomain.DailyScore, err error) (*scoredomain.DailyScore, error) {
	if err != nil {
		return nil, err
	}
	if score.ID == 0 {
		return nil, nil
	}
	return score, nil
}
