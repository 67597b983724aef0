// Package main hosts the curator CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into registry
// reads, operator runs, asset store maintenance, and configuration
// scaffolding. It centralizes configuration resolution, processor registry
// assembly, and store locking so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the processing logic lives
// in reusable media components.
package main
