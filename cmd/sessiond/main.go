// Command sessiond serves the session endpoints: register, login,
// refresh, logout and profile.
//
//	sessiond                   serve HTTP
//	sessiond migrate [up|down|version]
//
// Configuration is read from ./cmd/sessiond/config.yml (or -config) and
// environment variables such as AUTH_JWT_SECRET.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/sessionkit/bootstrap"
	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/config"
	"github.com/kbukum/sessionkit/database"
	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/observability"
	"github.com/kbukum/sessionkit/server"
	"github.com/kbukum/sessionkit/version"
)

const serviceName = "sessiond"

func main() {
	configFile := flag.String("config", "", "path to config file")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string, args []string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg, err := config.Load(serviceName, opts...)
	if err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Short()
		cfg.Observability.ServiceVersion = cfg.Version
	}

	if len(args) > 0 {
		switch args[0] {
		case "migrate":
			return migrate(ctx, cfg, args[1:])
		default:
			return fmt.Errorf("unknown command %q", args[0])
		}
	}
	return serve(ctx, cfg)
}

// serve registers observability, database, session wiring and the HTTP
// server, in that order, and blocks until a shutdown signal.
func serve(ctx context.Context, cfg *config.AppConfig) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	obs := observability.NewComponent(cfg.Observability, app.Logger)
	db := database.NewComponent(cfg.Database, app.Logger)
	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware()

	for _, c := range []component.Component{
		obs,
		db,
		newSessionComponent(cfg, db, srv, app.Components.HealthAll, app.Logger),
		server.NewComponent(srv),
	} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	return app.Run(ctx)
}

// migrate applies or rolls back the embedded schema migrations and exits.
func migrate(ctx context.Context, cfg *config.AppConfig, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	cfg.Database.Enabled = true
	cfg.Database.Migrate = false

	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return err
	}
	db := database.NewComponent(cfg.Database, app.Logger)
	if err := app.RegisterComponent(db); err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		switch action {
		case "up":
			return db.DB().MigrateUp()
		case "down":
			if err := db.DB().MigrateDown(); err != nil {
				return err
			}
			app.Logger.Info("Database migrations rolled back")
			return nil
		case "version":
			schema, dirty, err := db.DB().MigrateVersion()
			if err != nil {
				return err
			}
			app.Logger.Info("Database schema version", logger.Fields("version", schema, "dirty", dirty))
			return nil
		default:
			return fmt.Errorf("unknown migrate action %q (use up, down or version)", action)
		}
	})
}
