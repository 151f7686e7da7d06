// Package orchestrator wires the loader → engine → renderer pipeline of an
// intake session, providing dependency injection friendly helpers for
// consumers that prefer a single entry point.
package orchestrator
