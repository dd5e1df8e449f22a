package graph

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kbukum/apptemplate/component"
	"github.com/kbukum/apptemplate/errors"
	"github.com/kbukum/apptemplate/logger"
	"github.com/kbukum/apptemplate/resilience"
)

const (
	componentName = "graph"
	serviceName   = "neo4j"

	maxConnectBackoff = 2 * time.Second

	findPersonQuery = `
MATCH (p:Person)
WHERE p.name = $name
RETURN p`
)

// driverFunc opens a driver for cfg.
type driverFunc func(cfg Config) (neo4j.DriverWithContext, error)

func openDriver(cfg Config) (neo4j.DriverWithContext, error) {
	return neo4j.NewDriverWithContext(cfg.URI(), neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
}

// Checker looks up Person nodes by name. Registered as a component it keeps
// one driver open between Start and Stop; used on its own, every check opens
// and closes its own driver.
type Checker struct {
	cfg    Config
	open   driverFunc
	log    *logger.Logger
	mu     sync.RWMutex
	driver neo4j.DriverWithContext
}

var (
	_ component.Component   = (*Checker)(nil)
	_ component.Describable = (*Checker)(nil)
)

// NewChecker creates a checker for cfg. Defaults are applied to a copy.
func NewChecker(cfg Config) *Checker {
	cfg.ApplyDefaults()
	return &Checker{
		cfg:  cfg,
		open: openDriver,
		log:  logger.Get(componentName),
	}
}

// CheckForName returns the name stored on the Person node matching name.
// The boolean is true only when exactly one node matches.
func (c *Checker) CheckForName(ctx context.Context, name string) (string, bool, error) {
	driver, release, err := c.acquire()
	if err != nil {
		return "", false, err
	}
	defer release(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func() {
		if err := session.Close(ctx); err != nil {
			c.log.Warn("Closing graph session failed", map[string]interface{}{logger.FieldError: err.Error()})
		}
	}()

	result, err := session.Run(ctx, findPersonQuery, map[string]any{"name": name})
	if err != nil {
		return "", false, errors.ExternalServiceError(serviceName, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return "", false, errors.ExternalServiceError(serviceName, err)
	}

	c.log.Debug("Person lookup finished", map[string]interface{}{
		"name":    name,
		"matches": len(records),
	})
	if len(records) != 1 {
		return "", false, nil
	}
	found, err := personName(records[0])
	if err != nil {
		return "", false, err
	}
	return found, true, nil
}

// personName extracts the name property of the "p" node in rec.
func personName(rec *neo4j.Record) (string, error) {
	if rec == nil {
		return "", errors.New(errors.ErrCodeInvalidFormat, "no record to work with")
	}
	value, ok := rec.Get("p")
	if !ok {
		return "", errors.MissingField("p")
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return "", errors.InvalidFormat("p", "Person node")
	}
	name, ok := node.Props["name"].(string)
	if !ok {
		return "", errors.InvalidFormat("p.name", "string")
	}
	return name, nil
}

// acquire returns the component driver when started, otherwise a fresh
// driver that release closes.
func (c *Checker) acquire() (neo4j.DriverWithContext, func(context.Context), error) {
	c.mu.RLock()
	shared := c.driver
	c.mu.RUnlock()
	if shared != nil {
		return shared, func(context.Context) {}, nil
	}

	driver, err := c.open(c.cfg)
	if err != nil {
		return nil, nil, errors.ConnectionFailed(serviceName).WithCause(err).WithDetail("uri", c.cfg.URI())
	}
	return driver, func(ctx context.Context) {
		if err := driver.Close(ctx); err != nil {
			c.log.Warn("Closing graph driver failed", map[string]interface{}{logger.FieldError: err.Error()})
		}
	}, nil
}

// Name implements component.Component.
func (c *Checker) Name() string { return componentName }

// Start opens the shared driver and verifies the database is reachable.
func (c *Checker) Start(ctx context.Context) error {
	driver, err := c.open(c.cfg)
	if err != nil {
		return errors.ConnectionFailed(serviceName).WithCause(err).WithDetail("uri", c.cfg.URI())
	}
	policy := resilience.Exponential(c.cfg.ConnectAttempts, c.cfg.ConnectBackoff, maxConnectBackoff)
	policy.OnFailure = func(attempt int, err error, wait time.Duration) {
		c.log.Warn("Graph database not reachable yet", map[string]interface{}{
			logger.FieldAttempt: attempt,
			logger.FieldError:   err.Error(),
			"uri":               c.cfg.URI(),
		})
	}
	if _, err := resilience.Retry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, driver.VerifyConnectivity(ctx)
	}); err != nil {
		_ = driver.Close(ctx)
		return errors.ConnectionFailed(serviceName).WithCause(err).WithDetail("uri", c.cfg.URI())
	}

	c.mu.Lock()
	c.driver = driver
	c.mu.Unlock()

	c.log.Info("Connected to graph database", map[string]interface{}{"uri": c.cfg.URI()})
	return nil
}

// Stop closes the shared driver.
func (c *Checker) Stop(ctx context.Context) error {
	c.mu.Lock()
	driver := c.driver
	c.driver = nil
	c.mu.Unlock()

	if driver == nil {
		return nil
	}
	return driver.Close(ctx)
}

// Health reports whether the shared driver can still reach the database.
func (c *Checker) Health(ctx context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}

	c.mu.RLock()
	driver := c.driver
	c.mu.RUnlock()

	switch {
	case driver == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	case driver.VerifyConnectivity(ctx) != nil:
		h.Status = component.StatusUnhealthy
		h.Message = "unreachable"
	}
	return h
}

// Describe implements component.Describable.
func (c *Checker) Describe() component.Description {
	return component.Description{Type: "graph", Details: c.cfg.URI()}
}
