// Package asset defines the immutable value object at the center of curator:
// essence bytes paired with typed attributes and namespaced metadata.
//
// An Asset owns its essence exclusively. Constructors copy the bytes they are
// given, Essence returns an independent reader on every call, and the With
// helpers return modified copies instead of mutating in place. Two assets
// built from the same bytes and metadata always compare equal, which is what
// lets storage backends deduplicate and remove by value.
//
// Attributes is the typed home for fields curator itself derives (MIME type,
// dimensions, duration, common tags). Format-specific metadata lives in
// Namespace values keyed by format name; a Namespace carries parsed fields
// for querying alongside the raw bytes a processor needs to reconstruct the
// original file exactly.
package asset
