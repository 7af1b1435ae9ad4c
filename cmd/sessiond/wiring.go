package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/auth/password"
	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/config"
	"github.com/kbukum/sessionkit/database"
	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/observability"
	"github.com/kbukum/sessionkit/server"
	"github.com/kbukum/sessionkit/server/endpoint"
	"github.com/kbukum/sessionkit/server/middleware"
	"github.com/kbukum/sessionkit/session"
	"github.com/kbukum/sessionkit/user"
)

// sessionComponent builds the business layer once the database is up
// and mounts its routes on the server before the server starts serving.
type sessionComponent struct {
	cfg    *config.AppConfig
	db     *database.Component
	srv    *server.Server
	health endpoint.HealthChecker
	log    *logger.Logger

	pool *password.Pool
}

var _ component.Component = (*sessionComponent)(nil)

func newSessionComponent(cfg *config.AppConfig, db *database.Component, srv *server.Server,
	health endpoint.HealthChecker, log *logger.Logger) *sessionComponent {
	return &sessionComponent{cfg: cfg, db: db, srv: srv, health: health, log: log}
}

func (c *sessionComponent) Name() string { return "session" }

func (c *sessionComponent) Start(_ context.Context) error {
	if c.db.DB() == nil {
		return errors.New("session requires an enabled database")
	}

	codec, err := jwt.NewCodec(c.cfg.Auth.JWT)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	sessionMetrics, err := observability.NewSessionMetrics(observability.Meter("sessionkit/session"))
	if err != nil {
		return fmt.Errorf("session metrics: %w", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics(observability.Meter("sessionkit/http"))
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}

	c.pool = password.NewPool(c.cfg.Auth.Password)
	svc := session.New(user.NewGormStore(c.db.DB()), c.pool, codec, c.log, session.WithMetrics(sessionMetrics))

	engine := c.srv.Engine()
	engine.Use(middleware.Metrics(httpMetrics))
	engine.GET("/health", endpoint.Health(c.cfg.Name, c.health))
	endpoint.NewAuthHandler(svc, c.cfg.Auth.Cookie, c.log).
		RegisterRoutes(engine, middleware.Auth(codec, c.cfg.Auth.Cookie.AccessName))
	return nil
}

// Stop drains the hashing pool. The server stops first, so no request
// is still waiting on it.
func (c *sessionComponent) Stop(_ context.Context) error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func (c *sessionComponent) Health(_ context.Context) component.Health {
	if c.pool == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}
