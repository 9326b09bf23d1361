package usagestats

import (
	"github.com/smallbiznis/leadfuel/internal/usagestats/cache"
	"github.com/smallbiznis/leadfuel/internal/usagestats/service"
	"github.com/smallbiznis/leadfuel/internal/usagestats/store"
	"go.uber.org/fx"
)

var Module = fx.Module("usagestats.service",
	fx.Provide(store.New),
	fx.Provide(service.New),
	fx.Provide(cache.New),
)
