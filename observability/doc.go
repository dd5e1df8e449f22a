// Package observability exports OpenTelemetry traces and metrics over OTLP.
//
// Telemetry is a component: register it with the bootstrap app first so the
// global providers are in place before anything else starts.
//
//	app.RegisterComponent(observability.New(cfg.Telemetry, observability.Identity{
//	    Service: cfg.Name, Version: cfg.Version, Environment: cfg.Environment,
//	}))
package observability
