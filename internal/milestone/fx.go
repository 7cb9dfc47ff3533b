package milestone

import (
	"context"

	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	"github.com/smallbiznis/streakscore/internal/milestone/repository"
	"github.com/smallbiznis/streakscore/internal/milestone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("milestone.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(seedDefaults),
)

func seedDefaults(lc fx.Lifecycle, svc milestonedomain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := svc.SeedDefaults(ctx)
			return err
		},
	})
}
