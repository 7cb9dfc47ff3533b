package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

// NewScheduler registers the daily batch on the cron schedule for the
// lifetime of the app.
func NewScheduler(lc fx.Lifecycle, cfg Config, sched *Scheduler) {
	if !cfg.Enabled {
		sched.log.Info("daily batch disabled")
		return
	}

	c := cron.New(cron.WithLocation(sched.cfg.Location))
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			_, err := c.AddFunc(sched.cfg.Schedule, func() {
				if err := sched.DailyBatchJob(ctx); err != nil {
					sched.log.Error("daily batch failed", zap.Error(err))
				}
			})
			if err != nil {
				cancel()
				return err
			}
			c.Start()
			sched.log.Info("daily batch scheduled",
				zap.String("schedule", sched.cfg.Schedule),
				zap.String("timezone", sched.cfg.Location.String()),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}
