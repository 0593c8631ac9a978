package incident

import (
	"github.com/opsdeck/opsdeck/internal/incident/repository"
	"github.com/opsdeck/opsdeck/internal/incident/service"
	"go.uber.org/fx"
)

var Module = fx.Module("incident.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
