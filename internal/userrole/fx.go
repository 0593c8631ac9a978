package userrole

import (
	"github.com/opsdeck/opsdeck/internal/userrole/repository"
	"github.com/opsdeck/opsdeck/internal/userrole/service"
	"go.uber.org/fx"
)

var Module = fx.Module("userrole.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
