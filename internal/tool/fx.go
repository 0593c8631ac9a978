package tool

import (
	"github.com/opsdeck/opsdeck/internal/tool/repository"
	"github.com/opsdeck/opsdeck/internal/tool/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tool.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
