// Package main hosts the vinscan CLI entrypoint and command graph.
//
// Every invocation is one operator action: the command loads configuration,
// opens the local state database, restores the scan session, performs the
// action and persists the session again, so consecutive invocations behave
// like one continuous scanning session. Commands that reach the recognition
// service or mutate the session hold a file lock for their duration.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
