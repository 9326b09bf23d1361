package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/leadfuel/internal/authorization"
	"github.com/smallbiznis/leadfuel/internal/clock"
	"github.com/smallbiznis/leadfuel/internal/config"
	"github.com/smallbiznis/leadfuel/internal/observability"
	obsmiddleware "github.com/smallbiznis/leadfuel/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/leadfuel/internal/observability/metrics"
	obstracing "github.com/smallbiznis/leadfuel/internal/observability/tracing"
	"github.com/smallbiznis/leadfuel/internal/ratelimit"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	usagestatsdomain "github.com/smallbiznis/leadfuel/internal/usagestats/domain"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
	Gatherer    prometheus.Gatherer     `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(p.HTTPMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	clock          clock.Clock
	userSvc        userdomain.Service
	usageStatsSvc  usagestatsdomain.Service
	transactionSvc transactiondomain.Service
	authzSvc       authorization.Service
	dashboardLimit *ratelimit.DashboardLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Clock          clock.Clock
	UserSvc        userdomain.Service
	UsageStatsSvc  usagestatsdomain.Service
	TransactionSvc transactiondomain.Service
	AuthzSvc       authorization.Service
	DashboardLimit *ratelimit.DashboardLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		clock:          p.Clock,
		userSvc:        p.UserSvc,
		usageStatsSvc:  p.UsageStatsSvc,
		transactionSvc: p.TransactionSvc,
		authzSvc:       p.AuthzSvc,
		dashboardLimit: p.DashboardLimit,
		obsMetrics:     p.ObsMetrics,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.IdentityRequired())
	api.Use(s.DashboardRateLimit())

	api.GET("/me", s.Me)

	// -------- Usage statistics --------
	api.GET("/usage/stats", s.GetUsageStats)
	api.GET("/users/:id/usage/stats", s.GetUserUsageStats)

	// -------- Activity --------
	api.GET("/transactions", s.ListTransactions)
}
