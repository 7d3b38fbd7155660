package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coverlane/coverlane/internal/clock"
	"github.com/coverlane/coverlane/internal/config"
	"github.com/coverlane/coverlane/internal/migration"
	"github.com/coverlane/coverlane/internal/observability"
	"github.com/coverlane/coverlane/internal/server"
	"github.com/coverlane/coverlane/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface; pulls in the client and contract domains.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
