// Package mapper translates between domain entities and bun models.
//
// ToPersistence is a structural copy and never fails. ToDomain rebuilds the
// entity through its validating factory, so a stored row that breaks an
// invariant surfaces as an error instead of a half-built entity.
package mapper
