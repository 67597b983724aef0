// Package storage persists assets behind a small capability interface.
//
// Two implementations ship. MemoryStore holds assets in insertion order for
// the lifetime of the process and supports attribute filtering through Find.
// FileStore keeps assets in a SQLite database inside a directory, encoding
// each asset (essence, attributes, namespaces) as a deterministic CBOR
// payload so equal assets always produce equal blobs.
//
// Both stores hand out decimal string identifiers that start at 1 and are
// never reused. FileStore delegates the sequence to SQLite AUTOINCREMENT,
// which keeps ids monotonic across process restarts even after removals.
// Remove and Contains compare by asset value, not identifier, mirroring how
// assets themselves define equality.
package storage
