// Package main hosts the b2ctail CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// remote logs directory: continuous tailing, bounded snapshots, error digests,
// directory listings, and the MCP stdio server. Configuration resolution,
// credential loading, and logger setup live in commandContext so subcommands
// only deal with flags and output.
//
// Keep this package thin: behaviour belongs in internal packages and is
// surfaced here through dedicated commands or flags.
package main
