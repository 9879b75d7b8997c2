// Package archive keeps a history of forecast runs in a SQLite database.
//
// The schema is managed with golang-migrate from embedded migrations and is
// brought up to date every time a Store is opened. Each run stores its
// metadata, one row per forecast record with its projected points, and the
// categories that were skipped.
package archive
