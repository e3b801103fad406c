// Package main hosts the automv CLI entrypoint and command graph.
//
// The Cobra command tree covers the whole tool: credential settings, project
// browsing, the BytePlus patch set, readiness checks, pipeline runs from the
// terminal, and the local HTTP API. Configuration resolution and logger setup
// happen once in the shared command context so subcommands only deal with
// presentation.
//
// Keep this package lean: behaviour belongs in internal packages and is only
// surfaced here.
package main
