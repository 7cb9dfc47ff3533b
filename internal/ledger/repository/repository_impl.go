package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *ledgerdomain.LedgerEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (id, user_id, category_group, category_code, amount, note, day, voided, voided_at, parent_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.UserID,
		e.CategoryGroup,
		e.CategoryCode,
		e.Amount,
		e.Note,
		e.Day,
		e.Voided,
		e.VoidedAt,
		e.ParentID,
		e.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.LedgerEntry, error) {
	var entry ledgerdomain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, category_group, category_code, amount, note, day, voided, voided_at, parent_id, created_at
		 FROM ledger_entries WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) Void(ctx context.Context, db *gorm.DB, id snowflake.ID, voidedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE ledger_entries
		 SET voided = ?, voided_at = ?
		 WHERE id = ? AND voided = ?`,
		true,
		voidedAt,
		id,
		false,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListEntries(ctx context.Context, db *gorm.DB, userID string, day time.Time, includeVoided bool) ([]ledgerdomain.LedgerEntry, error) {
	var entries []ledgerdomain.LedgerEntry
	query := `SELECT id, user_id, category_group, category_code, amount, note, day, voided, voided_at, parent_id, created_at
		 FROM ledger_entries
		 WHERE user_id = ? AND day = ?`
	args := []any{userID, day}
	if !includeVoided {
		query += ` AND voided = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	if err := db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) ListUserDays(ctx context.Context, db *gorm.DB, from, to time.Time) ([]ledgerdomain.UserDay, error) {
	var keys []ledgerdomain.UserDay
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT user_id, day
		 FROM ledger_entries
		 WHERE day >= ? AND day <= ?
		 ORDER BY day ASC, user_id ASC`,
		from,
		to,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
