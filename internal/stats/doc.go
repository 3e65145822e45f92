// Package stats tracks per-user message counts and renders the usage summary
// served by the statistics endpoint. A Postgres-backed store is used in
// production; the in-memory store backs tests and database-less runs.
package stats
