package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/leadfuel/internal/clock"
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/migration"
	"github.com/smallbiznis/leadfuel/internal/observability"
	"github.com/smallbiznis/leadfuel/internal/seed"
	"github.com/smallbiznis/leadfuel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		fx.Invoke(seedDemoActivity),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := app.Stop(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

func seedDemoActivity(conn *gorm.DB, node *snowflake.Node, cfg config.Config, clk clock.Clock, log *zap.Logger) error {
	if cfg.SeedDemoUserID == "" {
		return nil
	}
	if cfg.IsProduction() {
		log.Warn("demo seed skipped in production")
		return nil
	}
	if err := seed.EnsureDemoActivity(conn, node, cfg.SeedDemoUserID, clk.Now()); err != nil {
		return err
	}
	log.Info("demo activity seeded", zap.String("user_id", cfg.SeedDemoUserID))
	return nil
}
