// Package bootstrap runs an application task with a uniform lifecycle.
//
// NewApp applies config defaults, validates the config and sets up the
// logger. RunTask then starts registered components, runs hooks and the
// task, and shuts everything down again, canceling the task on SIGINT or
// SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(checker)
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return work(ctx)
//	})
package bootstrap
