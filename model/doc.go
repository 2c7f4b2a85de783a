// Package model declares the bun records that mirror storage columns. Models
// are owned by the storage layer and only cross into the domain via mappers.
package model
