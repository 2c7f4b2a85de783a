// Package tombstone is a generic persistence layer for relational stores.
//
// Entities are translated to bun models by a mapper.Mapper, stored through a
// repository.Store and never physically removed: a delete sets the
// deleted_by and deleted_date_time markers and every read filters marked rows
// out. Service wraps a repository and reports outcomes as types.Result values.
package tombstone
