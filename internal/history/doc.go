// Package history owns the ordered list of saved vehicles.
//
// Records are kept most-recent-first, a VIN appears at most once, and every
// mutation replaces the persisted blob before the in-memory view changes so a
// failed write leaves both in agreement. Export renders the list as a
// semicolon-separated CSV with a UTF-8 byte-order mark for spreadsheet tools.
package history
