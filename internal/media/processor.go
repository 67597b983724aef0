package media

import (
	"context"
	"io"

	"curator/internal/asset"
)

// Processor reads whole files of the formats it declares into assets.
// Implementations separate embedded metadata from essence during Read, so the
// essence of the returned asset never carries the bytes a metadata namespace
// describes.
type Processor interface {
	// MIMETypes lists the types this processor can read. The list is
	// informational; dispatch relies on CanRead.
	MIMETypes() []string
	// CanRead probes the stream, leaving its position unspecified. The
	// dispatcher rewinds between probes.
	CanRead(ctx context.Context, r io.ReadSeeker) bool
	// Read decodes the stream into an asset. The stream is positioned at the
	// start on entry.
	Read(ctx context.Context, r io.ReadSeeker) (*asset.Asset, error)
}

// MetadataProcessor extracts and removes one metadata format.
type MetadataProcessor interface {
	// Format names the metadata format and doubles as the namespace under
	// which extracted fields attach to assets.
	Format() string
	// Read parses the stream's metadata into a namespace. Streams without
	// metadata in this format return an error wrapping ErrNoMetadata.
	Read(ctx context.Context, r io.ReadSeeker) (asset.Namespace, error)
	// Remove returns the stream's bytes with this format's metadata cut out.
	// Streams that never carried the format come back unchanged, making
	// removal idempotent.
	Remove(ctx context.Context, r io.ReadSeeker) ([]byte, error)
}

// Embedder is the optional capability of a MetadataProcessor to splice a
// previously extracted namespace back into essence bytes. When the namespace
// raw payload is intact the result is byte-identical to the original file.
type Embedder interface {
	Embed(ctx context.Context, essence []byte, ns asset.Namespace) ([]byte, error)
}
