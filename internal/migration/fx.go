package migration

import (
	clientdomain "github.com/coverlane/coverlane/internal/client/domain"
	"github.com/coverlane/coverlane/internal/config"
	contractdomain "github.com/coverlane/coverlane/internal/contract/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL migrations target postgres. Other dialects are
			// for local development and rely on the model schema.
			return conn.AutoMigrate(
				&clientdomain.Client{},
				&contractdomain.Contract{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
