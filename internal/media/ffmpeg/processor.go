package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"time"

	"curator/internal/asset"
	"curator/internal/media"
)

var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

var supportedTypes = []string{
	"video/x-matroska",
	"video/webm",
	"video/mp4",
	"application/ogg",
	"audio/x-wav",
	"audio/flac",
}

// Processor reads the container formats ffprobe recognizes. Attributes come
// from a probe pass; the essence is the container remuxed without global
// metadata or chapters, so tags live only in namespaces.
type Processor struct {
	options Options
}

var _ media.Processor = (*Processor)(nil)

// NewProcessor builds a container processor.
func NewProcessor(opts ...Option) *Processor {
	return &Processor{options: newOptions(opts)}
}

// MIMETypes lists the container types the processor claims.
func (p *Processor) MIMETypes() []string {
	return slices.Clone(supportedTypes)
}

// CanRead sniffs container magic bytes. No external binary runs here; the
// probe happens during Read.
func (p *Processor) CanRead(ctx context.Context, r io.ReadSeeker) bool {
	if ctx.Err() != nil {
		return false
	}
	prefix := make([]byte, 12)
	n, err := io.ReadFull(r, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return sniffContainer(prefix[:n]) != ""
}

// Read probes the stream, derives attributes, and strips embedded metadata
// from the essence. Namespaces stay empty; metadata extraction is the
// dispatcher's call to make.
func (p *Processor) Read(ctx context.Context, r io.ReadSeeker) (*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "ffmpeg", "read", "read stream", err)
	}
	mimeType := sniffContainer(data)
	if mimeType == "" {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "ffmpeg", "read", "unrecognized container", nil)
	}
	spec := containers[mimeType]

	in, err := writeTemp(data, spec.ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)

	result, err := probePath(ctx, p.options, in)
	if err != nil {
		return nil, err
	}
	if probed := result.MIMEType(); probed != "" {
		mimeType = probed
		spec = containers[mimeType]
	}

	attrs := asset.Attributes{
		MIMEType: mimeType,
		Duration: time.Duration(result.DurationSeconds() * float64(time.Second)),
		Artist:   result.tag("artist"),
		Title:    result.tag("title"),
		Album:    result.tag("album"),
	}
	if video := result.VideoStream(); video != nil {
		attrs.Width = video.Width
		attrs.Height = video.Height
	}

	essence, err := stripMetadata(ctx, p.options, in, spec)
	if err != nil {
		return nil, err
	}
	return asset.New(essence, attrs), nil
}

// sniffContainer maps magic bytes onto the claimed MIME type, or returns an
// empty string for unrecognized data. EBML prefixes resolve to matroska; the
// demuxer treats webm as a matroska profile.
func sniffContainer(prefix []byte) string {
	switch {
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], ebmlMagic):
		return "video/x-matroska"
	case len(prefix) >= 8 && bytes.Equal(prefix[4:8], []byte("ftyp")):
		return "video/mp4"
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], []byte("OggS")):
		return "application/ogg"
	case len(prefix) >= 12 && bytes.Equal(prefix[:4], []byte("RIFF")) && bytes.Equal(prefix[8:12], []byte("WAVE")):
		return "audio/x-wav"
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], []byte("fLaC")):
		return "audio/flac"
	default:
		return ""
	}
}

// stripMetadata remuxes the spooled input without global metadata or
// chapters and returns the resulting bytes.
func stripMetadata(ctx context.Context, o Options, in string, spec container) ([]byte, error) {
	out := tempPath(spec.ext)
	defer os.Remove(out)
	if _, err := runCommand(ctx, o.ffmpeg,
		"-v", "error", "-y",
		"-i", in,
		"-map_metadata", "-1",
		"-map_chapters", "-1",
		"-c", "copy",
		"-f", spec.muxer,
		out,
	); err != nil {
		return nil, media.Wrap(media.ErrOperator, "ffmpeg", "strip metadata", "", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, media.Wrap(media.ErrOperator, "ffmpeg", "strip metadata", "read output", err)
	}
	return data, nil
}
