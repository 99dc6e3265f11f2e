// Package internal holds the EventLink server internals.
//
// The tree is organized by responsibility:
//   - api: router, HTTP handlers, middleware and the JSON error envelope
//   - domain: users, events and rsvps services with their repository interfaces
//   - storage/postgres: pgx repositories and embedded migrations
//   - auth, audit, config, email, metrics, sanitize, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
