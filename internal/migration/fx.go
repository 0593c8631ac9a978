package migration

import (
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// Migrations target postgres; other dialects (sqlite in tests)
		// create their schema with AutoMigrate instead.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			if err := seed.EnsureDemoData(conn, log); err != nil {
				return err
			}
		}
		return nil
	}),
)
