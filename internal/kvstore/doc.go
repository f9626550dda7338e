// Package kvstore persists whole-collection blobs in a local SQLite database.
//
// Each store (history, settings, scan session) owns one fixed key and reads or
// replaces its blob as a unit; there is no partial update. Absent keys are a
// normal first-run condition reported through ErrNotFound, and JSON helpers
// handle the textual encoding shared by all callers. Writes retry briefly on
// SQLITE_BUSY so two quick invocations do not fail each other.
package kvstore
