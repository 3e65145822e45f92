// Package server exposes the message broker over HTTP: registration,
// long-poll message retrieval, message posting, client listing, usage
// statistics, and an optional WebSocket bridge onto the same broker.
//
// The implementation is organized into specialized files for handlers,
// routing, the WebSocket session, rate limiting, and origin checks to keep
// the codebase maintainable and testable as the project grows.
package server
