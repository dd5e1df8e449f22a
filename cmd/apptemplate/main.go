// Command apptemplate is a minimal application built on the apptemplate
// packages. It reports its version, echoes TEST_VAR and its arguments, and
// can list paths concurrently or look a person up in a graph database.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/apptemplate/bootstrap"
	"github.com/kbukum/apptemplate/config"
	apperrors "github.com/kbukum/apptemplate/errors"
	"github.com/kbukum/apptemplate/graph"
	"github.com/kbukum/apptemplate/logger"
	"github.com/kbukum/apptemplate/observability"
	"github.com/kbukum/apptemplate/resilience"
	"github.com/kbukum/apptemplate/version"
)

const testVar = "TEST_VAR"

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.Version {
		printVersion(os.Stdout, opts.Manifest)
		return
	}

	if err := run(context.Background(), opts); err != nil {
		fields := map[string]interface{}{logger.FieldError: err.Error()}
		if appErr, ok := apperrors.AsAppError(err); ok {
			fields["code"] = appErr.Code
		}
		logger.Error("Application failed", fields)
		os.Exit(1)
	}
}

func printVersion(w io.Writer, manifest string) {
	info := version.GetVersionInfo()
	info.Version = version.Resolve(manifest)
	fmt.Fprintf(w, "%s %s\n", serviceName, info)
}

// run loads configuration and executes the task inside the bootstrap
// lifecycle.
func run(ctx context.Context, opts *options) error {
	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg,
		config.WithConfigFile(opts.ConfigFile),
		config.WithEnvFile(opts.EnvFile),
	); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithRequiredLogSetup())
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		telemetry := observability.New(cfg.Telemetry, observability.Identity{
			Service:     cfg.Name,
			Version:     cfg.Version,
			Environment: cfg.Environment,
		})
		if err := app.RegisterComponent(telemetry); err != nil {
			return err
		}
	}

	var checker *graph.Checker
	if cfg.Graph.Enabled {
		checker = graph.NewChecker(cfg.Graph)
		if err := app.RegisterComponent(checker); err != nil {
			return err
		}
	}

	started := time.Now()
	app.OnStop(func(context.Context) error {
		app.Logger.Debug("Run finished", logger.DurationFields("run", time.Since(started)))
		return nil
	})

	return app.RunTask(ctx, func(ctx context.Context) error {
		return task(ctx, app.Logger, opts, checker)
	})
}

func task(ctx context.Context, log *logger.Logger, opts *options, checker *graph.Checker) error {
	manifest, err := version.ReadManifest(opts.Manifest)
	if err != nil {
		return err
	}
	log.Info("Hello from Go Template! Version: " + manifest.Version)

	value, err := config.RequireEnv(testVar)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Test value from \".env\" file: %s", value))

	if opts.CheckName != "" {
		if err := checkName(ctx, log, opts, checker); err != nil {
			return err
		}
	}

	if len(opts.Args) == 0 {
		log.Info("Define some CLI args to be shown here!")
		return nil
	}
	log.Info("Args from cli: " + strings.Join(opts.Args, ","))

	if !opts.CheckPaths {
		return nil
	}
	entries, err := checkPaths(ctx, opts.Args, opts.Concurrency, opts.Retries, opts.RetryDelay)
	if err != nil {
		return err
	}
	for _, e := range entries {
		kind := "file"
		if e.Dir {
			kind = "dir"
		}
		log.Info("Found path", map[string]interface{}{"path": e.Path, "kind": kind})
	}
	log.Info("Path check complete", map[string]interface{}{"entries": len(entries)})
	return nil
}

type nameMatch struct {
	name  string
	found bool
}

func checkName(ctx context.Context, log *logger.Logger, opts *options, checker *graph.Checker) error {
	if checker == nil {
		return apperrors.MissingField("graph.enabled").WithDetail("flag", "--check-name")
	}
	match, err := resilience.ManagedCall(ctx, func(ctx context.Context) (nameMatch, error) {
		name, found, err := checker.CheckForName(ctx, opts.CheckName)
		return nameMatch{name: name, found: found}, err
	}, opts.Retries, opts.RetryDelay)
	if err != nil {
		return err
	}
	if !match.found {
		log.Info("No person found", map[string]interface{}{"name": opts.CheckName})
		return nil
	}
	log.Info("Person found: " + match.name)
	return nil
}
