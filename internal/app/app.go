// Package app wires the clinicq components and routes into a bootstrap.App.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kbukum/clinicq/auth"
	"github.com/kbukum/clinicq/bootstrap"
	"github.com/kbukum/clinicq/database"
	"github.com/kbukum/clinicq/database/migration"
	"github.com/kbukum/clinicq/internal/clinic"
	"github.com/kbukum/clinicq/observability"
	"github.com/kbukum/clinicq/server"
	"github.com/kbukum/clinicq/server/middleware"
	"github.com/kbukum/clinicq/sse"
)

// StreamPath is the route of the SSE stream.
const StreamPath = "/room/stream"

// App is the bootstrapped clinicq process.
type App = bootstrap.App[*Config]

// New builds the application. Components start in order: observability,
// database, sse broker, then the HTTP server once routes are in place.
func New(cfg *Config, opts ...bootstrap.Option) (*App, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	telemetry := observability.NewComponent(&cfg.Observability, observability.Service{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err := app.RegisterComponent(telemetry); err != nil {
		return nil, err
	}

	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(clinic.Models()...)
	if err := app.RegisterComponent(db); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sseMetrics, err := sse.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("sse metrics: %w", err)
	}
	broker := sse.NewBroker(sse.NewRegistry(),
		sse.WithCapacity(cfg.SSE.Capacity),
		sse.WithKeepAlive(cfg.SSE.KeepAlive),
		sse.WithMetrics(sseMetrics),
		sse.WithLogger(log),
	)
	if err := app.RegisterComponent(sse.NewComponent(broker, StreamPath)); err != nil {
		return nil, err
	}

	var tokens *auth.TokenService
	if cfg.Auth.Signed() {
		if tokens, err = auth.NewTokenService(&cfg.Auth); err != nil {
			return nil, err
		}
	}

	app.OnStart(func(ctx context.Context) error {
		n, err := migration.NewRunner(db.DB().WithContext(ctx), log).
			Add(clinic.Migrations(cfg.Seed.Enabled)...).
			Run()
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("Data migrations applied", map[string]interface{}{"count": n})
		}
		return nil
	})

	app.OnConfigure(func(ctx context.Context, a *App) error {
		httpMetrics, err := observability.NewMetrics(observability.Meter("clinicq/http"))
		if err != nil {
			return fmt.Errorf("http metrics: %w", err)
		}

		srv := server.New(cfg.Server, a.Logger)
		srv.ApplyMiddleware(httpMetrics)
		srv.RegisterDefaultEndpoints(cfg.Name, a.Components.HealthAll, registry)

		// explicit nil interfaces when cookies are unsigned
		var parser middleware.TokenParser
		var issuer clinic.TokenIssuer
		if tokens != nil {
			parser, issuer = tokens, tokens
		}

		engine := srv.GinEngine()
		clinic.NewCookieHandler(cfg.Auth, issuer).RegisterRoutes(engine)
		api := engine.Group("/", middleware.Tenant(cfg.Auth.CookieName, parser))
		svc := clinic.NewService(db.DB(), broker, a.Logger)
		clinic.NewHandler(svc, broker, a.Logger).RegisterRoutes(api)

		if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
		return a.Components.StartAll(ctx)
	})

	// End open streams before the HTTP server waits for connections to drain.
	app.OnStop(func(context.Context) error {
		broker.Shutdown()
		return nil
	})

	return app, nil
}
