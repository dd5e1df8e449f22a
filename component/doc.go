// Package component defines lifecycle-managed dependencies and the registry
// that starts, stops and health-checks them.
//
// A Component is started in registration order and stopped in reverse
// order. Components may also implement Describable to have their
// configuration logged when registered.
package component
