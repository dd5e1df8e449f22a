package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/apptemplate/validation"
	"github.com/kbukum/apptemplate/version"
)

// options are the command line settings.
type options struct {
	ConfigFile  string
	EnvFile     string
	Manifest    string        `validate:"required"`
	Concurrency int           `validate:"min=1,max=256"`
	Retries     int           `validate:"min=0,max=10"`
	RetryDelay  time.Duration `validate:"min=0"`
	CheckPaths  bool
	CheckName   string
	Version     bool

	Args []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [args...]\n\nFlags:\n%s", serviceName, fs.FlagUsages())
	}

	fs.StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: searched next to the binary)")
	fs.StringVar(&opts.EnvFile, "env-file", "", ".env file (default: searched next to the binary)")
	fs.StringVarP(&opts.Manifest, "manifest", "m", version.DefaultManifest, "manifest file holding the application version")
	fs.IntVarP(&opts.Concurrency, "concurrency", "j", 4, "maximum number of paths checked at once")
	fs.IntVar(&opts.Retries, "retries", 2, "retries per failed check")
	fs.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "delay between retries")
	fs.BoolVar(&opts.CheckPaths, "check-paths", false, "treat args as paths and list them")
	fs.StringVar(&opts.CheckName, "check-name", "", "look up a Person by name in the graph database")
	fs.BoolVarP(&opts.Version, "version", "v", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.Args = fs.Args()

	if err := validation.Validate(opts); err != nil {
		return nil, err
	}
	return opts, nil
}
