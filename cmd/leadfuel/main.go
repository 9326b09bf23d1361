package main

import (
	"github.com/smallbiznis/leadfuel/internal/authorization"
	"github.com/smallbiznis/leadfuel/internal/cache"
	"github.com/smallbiznis/leadfuel/internal/clock"
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/migration"
	"github.com/smallbiznis/leadfuel/internal/observability"
	"github.com/smallbiznis/leadfuel/internal/plan"
	"github.com/smallbiznis/leadfuel/internal/ratelimit"
	"github.com/smallbiznis/leadfuel/internal/server"
	"github.com/smallbiznis/leadfuel/internal/transaction"
	"github.com/smallbiznis/leadfuel/internal/usagestats"
	"github.com/smallbiznis/leadfuel/internal/user"
	"github.com/smallbiznis/leadfuel/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		cache.Module,
		migration.Module,

		// Domains
		plan.Module,
		user.Module,
		transaction.Module,
		usagestats.Module,
		authorization.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}
