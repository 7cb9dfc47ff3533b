package score

import (
	"github.com/smallbiznis/streakscore/internal/score/repository"
	"github.com/smallbiznis/streakscore/internal/score/service"
	"go.uber.org/fx"
)

var Module = fx.Module("score.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
