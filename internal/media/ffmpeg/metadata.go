package ffmpeg

import (
	"context"
	"io"
	"os"
	"strings"

	"curator/internal/asset"
	"curator/internal/media"
)

// FormatFFMetadata is the namespace under which container tags attach.
const FormatFFMetadata = "ffmetadata"

const ffMetadataHeader = ";FFMETADATA1"

// FFMetadataProcessor extracts container-level tags through ffmpeg's
// ffmetadata muxer. Remuxing cannot reproduce the source byte for byte, so
// the processor carries no raw payload and is deliberately not an Embedder;
// exports of assets holding this namespace need SkipUnembeddable.
type FFMetadataProcessor struct {
	options Options
}

var _ media.MetadataProcessor = (*FFMetadataProcessor)(nil)

// NewFFMetadataProcessor builds the processor.
func NewFFMetadataProcessor(opts ...Option) *FFMetadataProcessor {
	return &FFMetadataProcessor{options: newOptions(opts)}
}

// Format names the metadata format.
func (p *FFMetadataProcessor) Format() string {
	return FormatFFMetadata
}

// Read exports the stream's global tags and parses them into a namespace.
// Streams that are not recognized containers, or carry no tags, return
// ErrNoMetadata.
func (p *FFMetadataProcessor) Read(ctx context.Context, r io.ReadSeeker) (asset.Namespace, error) {
	if err := ctx.Err(); err != nil {
		return asset.Namespace{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return asset.Namespace{}, media.Wrap(media.ErrValidation, "ffmetadata", "read", "read stream", err)
	}
	mimeType := sniffContainer(data)
	if mimeType == "" {
		return asset.Namespace{}, media.Wrap(media.ErrNoMetadata, "ffmetadata", "read", "not a recognized container", nil)
	}

	in, err := writeTemp(data, containers[mimeType].ext)
	if err != nil {
		return asset.Namespace{}, err
	}
	defer os.Remove(in)

	out := tempPath(".ini")
	defer os.Remove(out)
	if _, err := runCommand(ctx, p.options.ffmpeg,
		"-v", "error", "-y",
		"-i", in,
		"-f", "ffmetadata",
		out,
	); err != nil {
		return asset.Namespace{}, media.Wrap(media.ErrOperator, "ffmetadata", "read", "", err)
	}
	exported, err := os.ReadFile(out)
	if err != nil {
		return asset.Namespace{}, media.Wrap(media.ErrOperator, "ffmetadata", "read", "read export", err)
	}

	fields := parseFFMetadata(exported)
	if len(fields) == 0 {
		return asset.Namespace{}, media.Wrap(media.ErrNoMetadata, "ffmetadata", "read", "no global tags", nil)
	}
	return asset.NewNamespace(fields), nil
}

// Remove remuxes the container without global metadata or chapters.
func (p *FFMetadataProcessor) Remove(ctx context.Context, r io.ReadSeeker) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "ffmetadata", "remove", "read stream", err)
	}
	mimeType := sniffContainer(data)
	if mimeType == "" {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "ffmetadata", "remove", "not a recognized container", nil)
	}
	spec := containers[mimeType]

	in, err := writeTemp(data, spec.ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(in)
	return stripMetadata(ctx, p.options, in, spec)
}

// parseFFMetadata walks the global section of an ffmetadata export. Section
// headers like [CHAPTER] end the global tags; escaped characters and
// backslash line continuations follow the muxer's rules. Keys are lowercased
// so lookups stay stable across muxers that disagree about casing.
func parseFFMetadata(data []byte) map[string]string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], ffMetadataHeader) {
		return nil
	}

	fields := make(map[string]string)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		for hasTrailingEscape(line) && i+1 < len(lines) {
			i++
			line = line[:len(line)-1] + "\n" + lines[i]
		}
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		key, value, ok := splitTag(line)
		if !ok || key == "" || value == "" {
			continue
		}
		fields[strings.ToLower(key)] = value
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// hasTrailingEscape reports whether the line ends in an unescaped backslash.
func hasTrailingEscape(line string) bool {
	trailing := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		trailing++
	}
	return trailing%2 == 1
}

// splitTag splits key=value on the first unescaped separator and unescapes
// both halves.
func splitTag(line string) (string, string, bool) {
	var key strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) {
			key.WriteByte(line[i+1])
			i++
			continue
		}
		if c == '=' {
			return key.String(), unescapeTag(line[i+1:]), true
		}
		key.WriteByte(c)
	}
	return "", "", false
}

func unescapeTag(value string) string {
	var out strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && i+1 < len(value) {
			out.WriteByte(value[i+1])
			i++
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}
