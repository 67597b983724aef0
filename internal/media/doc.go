// Package media defines the processor contracts and the registry that
// dispatches file reads across them.
//
// A Processor turns whole files of its formats into assets, separating
// embedded metadata from essence as it decodes. A MetadataProcessor owns one
// metadata format: it parses fields into a namespace, removes the format
// from a stream, and, when it implements Embedder, splices a namespace back
// in byte for byte. The Registry holds both kinds in registration order and
// Read probes processors in that order, so dispatch is deterministic for a
// given registry.
//
// Metadata extraction is isolated per format: a processor that fails on a
// stream leaves its namespace absent and the read still succeeds. Export is
// the inverse of Read, rebuilding original file bytes from essence plus
// namespaces.
//
// Every error leaving this package wraps one of the exported sentinels, so
// callers classify with errors.Is rather than string matching.
package media
