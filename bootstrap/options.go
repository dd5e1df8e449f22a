package bootstrap

import (
	"time"

	"github.com/kbukum/apptemplate/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	runID           string
	gracefulTimeout *time.Duration
	requireSetup    bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// Without it the logger is initialized from LOG_SETUP when that variable is
// set, and from the config's Logging section otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithRequiredLogSetup makes LOG_SETUP mandatory: NewApp fails with
// logger.ErrLogSetupUndefined when it is unset or blank instead of falling
// back to the config's Logging section.
func WithRequiredLogSetup() Option {
	return func(o *appOptions) {
		o.requireSetup = true
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(o *appOptions) {
		o.runID = id
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
