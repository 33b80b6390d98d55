package app

import (
	"fmt"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	"github.com/TestimonyAdegoke/montessa-sub006/auth/jwt"
	"github.com/TestimonyAdegoke/montessa-sub006/bootstrap"
	"github.com/TestimonyAdegoke/montessa-sub006/component"
	"github.com/TestimonyAdegoke/montessa-sub006/database"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/messaging"
	"github.com/TestimonyAdegoke/montessa-sub006/observability"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
	"github.com/TestimonyAdegoke/montessa-sub006/redis"
	"github.com/TestimonyAdegoke/montessa-sub006/server"
	"github.com/TestimonyAdegoke/montessa-sub006/server/middleware"
	"github.com/TestimonyAdegoke/montessa-sub006/version"
)

const meterName = "github.com/TestimonyAdegoke/montessa-sub006"

// Service is the assembled montessa process.
type Service struct {
	*bootstrap.App[*Config]

	Telemetry *observability.Component
	Database  *database.Component
	Redis     *redis.Component
	Realtime  *realtime.Component
	Server    *server.Component
	Tokens    *jwt.Service[*auth.Claims]
}

// New builds every component and mounts the routes. Components register in
// dependency order, so shutdown stops the HTTP server first and flushes
// telemetry last.
func New(cfg *Config, opts ...bootstrap.Option) (*Service, error) {
	a, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := a.Logger

	tokens, err := auth.NewTokenService(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	meter := observability.Meter(meterName)
	httpMetrics, err := observability.NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	hubMetrics, err := realtime.NewMetrics(meter)
	if err != nil {
		return nil, err
	}

	buildVersion := cfg.Version
	if buildVersion == "" {
		buildVersion = version.GetVersionInfo().String()
	}
	telemetry := observability.NewComponent(cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     buildVersion,
		Environment: cfg.Environment,
	}, log)

	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(&messaging.Message{})
	rds := redis.NewComponent(cfg.Redis, log)

	hubOpts := []realtime.Option{realtime.WithMetrics(hubMetrics)}
	if cfg.Realtime.Relay.Enabled {
		hubOpts = append(hubOpts, realtime.WithBroker(redis.NewPubSub(rds, cfg.Realtime.Relay.Channel, log)))
	}
	hub := realtime.NewComponent(cfg.Realtime, log, hubOpts...)

	srv := server.New(cfg.Server, log)
	// Streams never finish on their own; end them so Shutdown can drain.
	srv.OnShutdown(func() { hub.Registry().CloseAll() })

	msgs := messaging.NewService(messaging.NewStore(db), hub.Emitter(), log, messaging.WithMetrics(httpMetrics))

	s := &Service{
		App:       a,
		Telemetry: telemetry,
		Database:  db,
		Redis:     rds,
		Realtime:  hub,
		Server:    server.NewComponent(srv),
		Tokens:    tokens,
	}
	s.mountRoutes(srv, httpMetrics, msgs)

	for _, c := range []component.Component{telemetry, db, rds, hub, s.Server} {
		if err := s.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	log.Info("Service assembled", logger.Fields(
		"auth", cfg.Auth.Describe(),
		"relay", cfg.Realtime.Relay.Enabled,
		"database", cfg.Database.Enabled,
	))
	return s, nil
}

func (s *Service) mountRoutes(srv *server.Server, metrics *observability.Metrics, msgs *messaging.Service) {
	cfg := s.Cfg
	engine := srv.Engine()
	engine.Use(middleware.Telemetry(metrics))
	srv.RegisterDefaultEndpoints(cfg.Name, s.Components.HealthAll)

	api := engine.Group("/api", middleware.Auth(middleware.AuthConfig{
		Validator:  auth.JWTValidator(s.Tokens),
		QueryParam: cfg.Auth.QueryParam,
	}))

	rt := api.Group("/realtime")
	rt.GET("/stream",
		middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.Stream}),
		realtime.StreamHandler(s.Realtime.Manager()),
	)
	rt.GET("/users", middleware.RequireRole(auth.RoleAdmin), realtime.ActiveUsersHandler(s.Realtime.Registry()))

	limited := api.Group("", middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.API}))
	messaging.NewHandler(msgs).Register(limited)
}
