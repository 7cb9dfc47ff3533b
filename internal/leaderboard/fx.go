package leaderboard

import (
	"github.com/smallbiznis/streakscore/internal/leaderboard/repository"
	"github.com/smallbiznis/streakscore/internal/leaderboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leaderboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
