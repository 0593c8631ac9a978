package purchase

import (
	"github.com/opsdeck/opsdeck/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(service.New),
)
