package client

import (
	"github.com/coverlane/coverlane/internal/client/repository"
	"github.com/coverlane/coverlane/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
