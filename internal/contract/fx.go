package contract

import (
	"github.com/coverlane/coverlane/internal/contract/repository"
	"github.com/coverlane/coverlane/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
