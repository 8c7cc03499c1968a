// Package store provides the document gateway: create, read, update and
// delete against a single collection.
//
// The gateway separates two failure paths. Invalid arguments (an empty
// document to insert, an empty filter for update or delete, empty changes)
// are returned immediately as errors for which IsInputError reports true and
// the collection is never called. Failures inside the collection are logged,
// counted and turned into false, an empty result or zero with a nil error.
//
// Drivers live in subpackages:
//
//   - memstore: in-process, used by tests and the example
//   - sqlstore: SQLite or PostgreSQL through bun
//   - mongostore: MongoDB through the official driver
//
// Every call is a single attempt; the gateway never retries.
package store
