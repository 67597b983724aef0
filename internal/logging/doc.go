// Package logging assembles the structured slog loggers used across curator.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes the standardized field keys components tag
// their lines with. The package also provides a no-op logger for tests and
// library wiring that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees.
package logging
