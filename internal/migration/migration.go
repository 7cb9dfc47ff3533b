package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded postgres migrations. Other dialects go
// through AutoMigrate instead.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&memberdomain.Member{},
		&ledgerdomain.LedgerEntry{},
		&summarydomain.DailySummary{},
		&milestonedomain.MilestoneConfig{},
		&scoredomain.DailyScore{},
		&branchdomain.BranchScoreDaily{},
		&leaderboarddomain.LeaderboardSnapshot{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
