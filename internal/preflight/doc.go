// Package preflight provides readiness checks for the paths and remote
// service vinscan depends on.
//
// "vinscan status" prints every result. A failing recognition check never
// blocks the rest of the tool: manual entry, history and export keep working
// and only the recognition commands report the configuration error.
package preflight
