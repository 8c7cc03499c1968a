// Package document defines the value model shared by filters, documents,
// cache keys and the storage backends.
//
// A Value is a closed tagged variant (null, bool, int, float, string, array,
// object, opaque). Driver values without a natural textual form, such as
// object ids or timestamps, are carried as opaque values that keep both the
// original value and a stable text, so they round-trip to the driver and
// still serialize deterministically.
//
// Matches and ApplyUpdate implement the subset of document-store query and
// update operators needed by the in-process and SQL backends.
package document
