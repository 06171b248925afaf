// Package main hosts the phy CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC
// calls against the phy daemon: session imports, wizard navigation, cluster
// labeling and restructuring, log tailing, and configuration scaffolding.
// Command context centralizes configuration resolution and socket discovery
// so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
