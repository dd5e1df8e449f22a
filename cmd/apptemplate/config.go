package main

import (
	"fmt"

	"github.com/kbukum/apptemplate/config"
	"github.com/kbukum/apptemplate/graph"
	"github.com/kbukum/apptemplate/observability"
)

const serviceName = "apptemplate"

// AppConfig is the configuration loaded from config.yml, .env and the
// environment.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Graph                graph.Config         `yaml:"graph" mapstructure:"graph"`
	Telemetry            observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults implements bootstrap.Config.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Graph.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate implements bootstrap.Config.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("config.graph: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}
