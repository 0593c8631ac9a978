package subscription

import (
	"github.com/opsdeck/opsdeck/internal/subscription/repository"
	"github.com/opsdeck/opsdeck/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
