package mp3

import (
	"bytes"
	"context"
	"io"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"

	"curator/internal/asset"
	"curator/internal/media"
)

// FormatID3 names the metadata format handled by ID3Processor.
const FormatID3 = "id3"

const id3v1Length = 128

// ID3Processor reads, strips, and re-embeds ID3 tags on MPEG audio streams.
// The ID3v2 prefix and ID3v1 trailer are kept verbatim as cuts, so a
// strip-then-embed round trip is byte exact.
type ID3Processor struct{}

var (
	_ media.MetadataProcessor = (*ID3Processor)(nil)
	_ media.Embedder          = (*ID3Processor)(nil)
)

// NewID3Processor builds the ID3 metadata processor.
func NewID3Processor() *ID3Processor {
	return &ID3Processor{}
}

// Format returns "id3".
func (p *ID3Processor) Format() string {
	return FormatID3
}

// Read parses the stream's ID3 tags. The returned namespace carries the
// merged fields plus the raw tag cuts needed to restore the stream byte for
// byte.
func (p *ID3Processor) Read(ctx context.Context, r io.ReadSeeker) (asset.Namespace, error) {
	if err := ctx.Err(); err != nil {
		return asset.Namespace{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return asset.Namespace{}, media.Wrap(media.ErrValidation, "id3", "read", "read stream", err)
	}
	prefix := id3v2Size(data)
	trailer := id3v1Size(data)
	if prefix == 0 && trailer == 0 {
		return asset.Namespace{}, media.Wrap(media.ErrNoMetadata, "id3", "read", "no ID3 tags", nil)
	}

	var cuts []media.Cut
	if prefix > 0 {
		cuts = append(cuts, media.Cut{Offset: 0, Block: bytes.Clone(data[:prefix])})
	}
	if trailer > 0 {
		audioLen := len(data) - prefix - trailer
		cuts = append(cuts, media.Cut{
			Offset: int64(audioLen),
			Block:  bytes.Clone(data[len(data)-trailer:]),
		})
	}
	raw, err := media.EncodeCuts(cuts)
	if err != nil {
		return asset.Namespace{}, err
	}
	return asset.NewNamespace(tagFields(data, prefix, trailer)).WithRaw(raw), nil
}

// Remove returns the stream without its ID3v2 prefix and ID3v1 trailer. A
// stream without tags comes back unchanged.
func (p *ID3Processor) Remove(ctx context.Context, r io.ReadSeeker) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "id3", "remove", "read stream", err)
	}
	prefix := id3v2Size(data)
	trailer := id3v1Size(data)
	return bytes.Clone(data[prefix : len(data)-trailer]), nil
}

// Embed splices the namespace's recorded tags back around the essence.
func (p *ID3Processor) Embed(ctx context.Context, essence []byte, ns asset.Namespace) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cuts, err := media.DecodeCuts(ns.Raw())
	if err != nil {
		return nil, err
	}
	if len(cuts) == 0 {
		return bytes.Clone(essence), nil
	}
	return media.Insert(essence, cuts)
}

// id3v2Size reports the total byte length of a leading ID3v2 tag, zero when
// the stream does not start with one. The size field is synchsafe; a footer
// flag adds ten bytes.
func id3v2Size(data []byte) int {
	if len(data) < 10 || data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return 0
	}
	for _, b := range data[6:10] {
		if b&0x80 != 0 {
			return 0
		}
	}
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	total := 10 + size
	if data[5]&0x10 != 0 {
		total += 10
	}
	if total > len(data) {
		return 0
	}
	return total
}

// id3v1Size reports 128 when the stream ends in an ID3v1 trailer.
func id3v1Size(data []byte) int {
	if len(data) < id3v1Length {
		return 0
	}
	tail := data[len(data)-id3v1Length:]
	if tail[0] == 'T' && tail[1] == 'A' && tail[2] == 'G' {
		return id3v1Length
	}
	return 0
}

// parseID3v1 reads the fixed-layout trailer fields.
func parseID3v1(trailer []byte) map[string]string {
	fields := make(map[string]string)
	if len(trailer) < id3v1Length {
		return fields
	}
	for key, raw := range map[string][]byte{
		"title":  trailer[3:33],
		"artist": trailer[33:63],
		"album":  trailer[63:93],
	} {
		if value := strings.TrimRight(string(raw), "\x00 "); value != "" {
			fields[key] = value
		}
	}
	return fields
}

// parseID3v2Fields reads artist, title, and album out of a leading ID3v2
// tag via the id3v2 library.
func parseID3v2Fields(data []byte) map[string]string {
	fields := make(map[string]string)
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		return fields
	}
	for key, value := range map[string]string{
		"artist": tag.Artist(),
		"title":  tag.Title(),
		"album":  tag.Album(),
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
