// Package pipeline chains asset operators into reusable processing passes.
//
// A Pipeline is configured once with an ordered list of operators and can
// then process any number of assets. Processing is lazy: Process returns a
// Results iterator and no operator runs until the caller advances it, so a
// pipeline over a large batch only pays for the assets actually consumed.
//
// Iteration stops at the first failure. The offending error carries the
// operator's position in the chain and the source asset's MIME type, keeps
// the media sentinel classification of the underlying cause, and inputs
// after the failed one are never touched.
package pipeline
