// Package bootstrap runs the service lifecycle.
//
// NewApp validates the typed config and initializes the logger. Run then
// starts the registered components in order, runs the hooks, prints the
// startup summary, blocks until SIGINT/SIGTERM and stops everything in
// reverse order. RunTask is the same lifecycle around a finite task,
// used for one-shot commands such as migrations.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.RegisterComponent(server.NewComponent(srv))
//	err = app.Run(ctx)
package bootstrap
