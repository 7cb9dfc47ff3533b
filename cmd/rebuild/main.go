// Command rebuild recomputes daily summaries, branch scores and leaderboard
// snapshots for a range of days from the ledger and stored daily scores.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

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
	"github.com/smallbiznis/streakscore/internal/summary"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"github.com/smallbiznis/streakscore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fromFlag := flag.String("from", "", "Required: first day to rebuild (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "Last day to rebuild (YYYY-MM-DD), defaults to --from")
	timeout := flag.Duration("timeout", 30*time.Minute, "Upper bound for the whole rebuild")
	flag.Parse()

	from, err := calendar.Parse(*fromFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "--from must be a date formatted as YYYY-MM-DD")
		os.Exit(2)
	}
	to := from
	if *toFlag != "" {
		to, err = calendar.Parse(*toFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "--to must be a date formatted as YYYY-MM-DD")
			os.Exit(2)
		}
	}

	var sched *scheduler.Scheduler
	var log *zap.Logger
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(func() (*snowflake.Node, error) { return snowflake.NewNode(2) }),
		db.Module,
		migration.Module,
		clock.Module,
		lock.Module,
		milestone.Module,
		member.Module,
		score.Module,
		summary.Module,
		ledger.Module,
		branch.Module,
		leaderboard.Module,
		fx.Provide(scheduler.ProvideConfig, scheduler.New),
		fx.Populate(&sched, &log),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "start:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	runErr := sched.Rebuild(ctx, from, to)
	cancel()
	if runErr != nil {
		log.Error("rebuild failed",
			zap.String("from", calendar.Format(from)),
			zap.String("to", calendar.Format(to)),
			zap.Error(runErr),
		)
	} else {
		log.Info("rebuild finished",
			zap.String("from", calendar.Format(from)),
			zap.String("to", calendar.Format(to)),
		)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStop()
	_ = app.Stop(stopCtx)

	if runErr != nil {
		os.Exit(1)
	}
}
