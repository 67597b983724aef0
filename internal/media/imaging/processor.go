package imaging

import (
	"bytes"
	"context"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"curator/internal/asset"
	"curator/internal/media"
)

var (
	pngMagic   = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	gif87Magic = []byte("GIF87a")
	gif89Magic = []byte("GIF89a")
)

// Processor reads raster images. JPEG essences come back with their EXIF
// application segments cut out; PNG and GIF essences pass through whole.
type Processor struct{}

var _ media.Processor = (*Processor)(nil)

// NewProcessor builds the raster image processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// MIMETypes lists the image types the processor produces.
func (p *Processor) MIMETypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif"}
}

// CanRead sniffs the stream's magic bytes.
func (p *Processor) CanRead(ctx context.Context, r io.ReadSeeker) bool {
	var magic [8]byte
	n, err := io.ReadFull(r, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return sniffImage(magic[:n]) != ""
}

func sniffImage(b []byte) string {
	switch {
	case len(b) >= 3 && b[0] == markerPrefix && b[1] == markerSOI && b[2] == markerPrefix:
		return "image/jpeg"
	case len(b) >= len(pngMagic) && bytes.Equal(b[:len(pngMagic)], pngMagic):
		return "image/png"
	case len(b) >= len(gif87Magic) && (bytes.Equal(b[:len(gif87Magic)], gif87Magic) || bytes.Equal(b[:len(gif89Magic)], gif89Magic)):
		return "image/gif"
	}
	return ""
}

// Read decodes the image header for dimensions and builds the asset. The
// artist attribute is lifted from EXIF when present.
func (p *Processor) Read(ctx context.Context, r io.ReadSeeker) (*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "imaging", "read", "read stream", err)
	}
	mimeType := sniffImage(data)
	if mimeType == "" {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "imaging", "read", "unrecognized image stream", nil)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "imaging", "read", "decode image header", err)
	}
	attrs := asset.Attributes{MIMEType: mimeType, Width: cfg.Width, Height: cfg.Height}

	essence := data
	if mimeType == "image/jpeg" {
		stripped, cuts, cutErr := cutExif(data)
		if cutErr != nil {
			return nil, cutErr
		}
		essence = stripped
		if len(cuts) > 0 {
			if fields, parseErr := exifFieldsFromSegment(cuts[0].Block); parseErr == nil {
				attrs.Artist = fields["artist"]
			}
		}
	}
	return asset.New(essence, attrs), nil
}
