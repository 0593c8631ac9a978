package project

import (
	"github.com/opsdeck/opsdeck/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(service.New),
)
