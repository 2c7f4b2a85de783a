// Package database provides connection management, configuration loading,
// migrations, SQL seeding, query hooks, driver error classification and the
// logger used across the persistence layer, built on top of Bun.
package database
