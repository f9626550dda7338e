// Package session ties the location gate, the pending draft, recognition and
// the stores together into the scan-to-record workflow.
//
// Every recognition call is tagged with a monotonically increasing token.
// Only one call may be in flight; a second capture is rejected with
// services.ErrBusy. Supersede invalidates the in-flight token so a late
// result is discarded with services.ErrStale instead of overwriting newer
// state. The gate and draft survive between command invocations through
// Snapshot and Restore, and a file lock extends the busy guard across
// processes.
package session
