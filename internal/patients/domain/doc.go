// Package domain implements the patient registry: identifier allocation and
// the id-to-record table behind every SPRS operation.
//
// This package follows Domain-Driven Design (DDD) principles:
//   - Contains only pure Go code with standard library imports
//   - Defines the Record entity with an immutable identifier
//   - Defines the Repository interface the application layer depends on
//   - Provides the InvalidArgument and NotFound error kinds
//
// # Identifiers
//
// Identifiers have the form "P-<n>" where n comes from a counter seeded at 101
// and incremented on every successful registration. Identifiers are never
// reused, even after the record they named has been deleted.
//
// # Concurrency
//
// Registry holds no locks. Callers drive it from a single goroutine (the menu
// loop, the Bubble Tea update loop or a batch run).
package domain
