// Package repository provides a generic, soft-delete aware repository built on
// Bun. GenericRepository translates entities through a mapper.Mapper and runs
// on any Store; BunStore is the relational binding with dialect aware upserts.
package repository
