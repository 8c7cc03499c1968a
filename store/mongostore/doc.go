// Package mongostore implements store.Collection on top of the official
// MongoDB driver. Filters and update documents are passed to the server as
// BSON, so the full Mongo query language is available.
package mongostore
