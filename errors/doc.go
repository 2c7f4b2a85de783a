// Package errors defines the stable error vocabulary of the persistence core.
// Callers match kinds with Is* helpers or KindOf; driver errors never leak
// through the typed errors built here.
package errors
