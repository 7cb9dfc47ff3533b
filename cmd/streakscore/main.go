package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakscore/internal/branch"
	"github.com/smallbiznis/streakscore/internal/clock"
	"github.com/smallbiznis/streakscore/internal/config"
	"github.com/smallbiznis/streakscore/internal/leaderboard"
	"github.com/smallbiznis/streakscore/internal/ledger"
	"github.com/smallbiznis/streakscore/internal/lock"
	"github.com/smallbiznis/streakscore/internal/member"
	"github.com/smallbiznis/streakscore/internal/migration"
	"github.com/smallbiznis/streakscore/internal/milestone"
	"github.com/smallbiznis/streakscore/internal/observability"
	"github.com/smallbiznis/streakscore/internal/scheduler"
	"github.com/smallbiznis/streakscore/internal/score"
	"github.com/smallbiznis/streakscore/internal/server"
	"github.com/smallbiznis/streakscore/internal/summary"
	"github.com/smallbiznis/streakscore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		lock.Module,

		// Scoring domains
		milestone.Module,
		member.Module,
		score.Module,
		summary.Module,
		ledger.Module,
		branch.Module,
		leaderboard.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
