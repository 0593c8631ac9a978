package credential

import (
	"github.com/opsdeck/opsdeck/internal/credential/repository"
	"github.com/opsdeck/opsdeck/internal/credential/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credential.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
