package migration

import (
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Run(conn, cfg.DBType); err != nil {
			return err
		}
		log.Info("database schema up to date", zap.String("db_type", cfg.DBType))
		return seed.EnsureDefaultPlans(conn)
	}),
)
