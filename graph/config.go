package graph

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kbukum/apptemplate/validation"
)

// Config describes how to reach the graph database.
type Config struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Scheme   string `yaml:"scheme" mapstructure:"scheme" validate:"oneof=neo4j neo4j+s bolt bolt+s"`
	Host     string `yaml:"host" mapstructure:"host" validate:"required,hostname_rfc1123"`
	Port     int    `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	Username string `yaml:"username" mapstructure:"username" validate:"required"`
	Password string `yaml:"password" mapstructure:"password"`

	// ConnectAttempts bounds the connectivity checks made on Start.
	ConnectAttempts int           `yaml:"connect_attempts" mapstructure:"connect_attempts" validate:"min=1,max=10"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" mapstructure:"connect_backoff" validate:"gte=0"`
}

// ApplyDefaults fills in the local development defaults.
func (c *Config) ApplyDefaults() {
	if c.Scheme == "" {
		c.Scheme = "neo4j"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 7687
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 3
	}
	if c.ConnectBackoff == 0 {
		c.ConnectBackoff = 200 * time.Millisecond
	}
}

// Validate checks the config when the graph check is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}

// URI returns the connection target, e.g. "neo4j://localhost:7687".
func (c *Config) URI() string {
	return fmt.Sprintf("%s://%s", c.Scheme, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}
