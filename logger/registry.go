package logger

import (
	"sync"
)

// registry caches component loggers. Entries derived from the global logger
// are dropped whenever the global logger changes so components pick up the
// new configuration; explicitly registered loggers are kept.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
	derived: make(map[string]bool),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	derived map[string]bool
}

// Register stores a named logger, overriding the derived one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
	delete(registry.derived, name)
}

// Get returns the logger for a component. Unless one was registered, it is
// the global logger tagged with the component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if l, ok := registry.loggers[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	registry.loggers[name] = l
	registry.derived[name] = true
	return l
}

// RegisterDefaults derives loggers for the given components up front.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Get(name)
	}
}

// resetDerived forgets every logger derived from the previous global logger.
func resetDerived() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for name := range registry.derived {
		delete(registry.loggers, name)
	}
	clear(registry.derived)
}
