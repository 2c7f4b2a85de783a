// Package domain holds the entities and value objects persisted by the
// repository. Values are built through validating factories and are never
// mutated in place.
package domain
