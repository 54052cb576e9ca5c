// Package sqlite provides a persistent embedding cache on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Vectors are stored as little-endian float32 blobs, so a
// cached vector reads back bit for bit.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-embed/cache/embeddings.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with
// a busy timeout, so batch workers may read and write at the same time.
package sqlite
