// Package main hosts the zipseal CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, builds the logger and
// the batch runner, and renders results. "run" protects tagged archives,
// "scan" previews the same decisions without touching anything, "status"
// reports readiness, "history" reads the run journal, "logs" tails the log
// file, and "config" scaffolds and checks configuration files.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only wired and rendered here.
package main
