package wallet

import (
	"github.com/opsdeck/opsdeck/internal/wallet/repository"
	"github.com/opsdeck/opsdeck/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
