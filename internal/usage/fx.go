package usage

import (
	"github.com/opsdeck/opsdeck/internal/usage/repository"
	"github.com/opsdeck/opsdeck/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
