package mp3

import (
	"context"
	"io"
	"time"

	"curator/internal/asset"
	"curator/internal/media"
)

// probeWindow bounds the search for the first MPEG frame header.
const probeWindow = 4096

// MPEG-1 Layer III bitrates in kbps, indexed by the header bitrate field.
var mpeg1Layer3Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// Processor reads MPEG audio streams. The essence comes back with the ID3v2
// prefix and ID3v1 trailer cut off, leaving only frame data.
type Processor struct{}

var _ media.Processor = (*Processor)(nil)

// NewProcessor builds the MPEG audio processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// MIMETypes lists the audio types the processor produces.
func (p *Processor) MIMETypes() []string {
	return []string{"audio/mpeg"}
}

// CanRead recognizes an ID3v2 header or a bare MPEG frame sync.
func (p *Processor) CanRead(ctx context.Context, r io.ReadSeeker) bool {
	var magic [3]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return false
	}
	if magic[0] == 'I' && magic[1] == 'D' && magic[2] == '3' {
		return true
	}
	return magic[0] == 0xFF && magic[1]&0xE0 == 0xE0
}

// Read strips the surrounding tags, estimates the duration from the first
// frame header, and lifts artist, title, and album into attributes.
func (p *Processor) Read(ctx context.Context, r io.ReadSeeker) (*asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "mp3", "read", "read stream", err)
	}
	prefix := id3v2Size(data)
	trailer := id3v1Size(data)
	audio := data[prefix : len(data)-trailer]
	if !hasFrameSync(audio) {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "mp3", "read", "no MPEG frame data", nil)
	}

	attrs := asset.Attributes{
		MIMEType: "audio/mpeg",
		Duration: estimateDuration(audio),
	}
	fields := tagFields(data, prefix, trailer)
	attrs.Artist = fields["artist"]
	attrs.Title = fields["title"]
	attrs.Album = fields["album"]

	return asset.New(audio, attrs), nil
}

// tagFields merges ID3v2 and ID3v1 values, v2 winning where both are set.
func tagFields(data []byte, prefix, trailer int) map[string]string {
	fields := make(map[string]string)
	if trailer > 0 {
		for key, value := range parseID3v1(data[len(data)-trailer:]) {
			fields[key] = value
		}
	}
	if prefix > 0 {
		for key, value := range parseID3v2Fields(data) {
			fields[key] = value
		}
	}
	return fields
}

// estimateDuration assumes constant bitrate: stream bytes over the bitrate
// of the first recognized frame. Streams without a recognizable MPEG-1
// Layer III frame report zero.
func estimateDuration(audio []byte) time.Duration {
	bitrate, ok := findBitrate(audio)
	if !ok || bitrate == 0 {
		return 0
	}
	seconds := float64(len(audio)) * 8 / float64(bitrate)
	return time.Duration(seconds * float64(time.Second))
}

// findBitrate scans for the first MPEG-1 Layer III frame header and returns
// its bitrate in bits per second.
func findBitrate(audio []byte) (int, bool) {
	limit := len(audio) - 4
	if limit > probeWindow {
		limit = probeWindow
	}
	for i := 0; i <= limit; i++ {
		if audio[i] != 0xFF || audio[i+1]&0xE0 != 0xE0 {
			continue
		}
		version := (audio[i+1] >> 3) & 0x03
		layer := (audio[i+1] >> 1) & 0x03
		if version != 3 || layer != 1 {
			continue
		}
		bitrateIdx := audio[i+2] >> 4
		sampleIdx := (audio[i+2] >> 2) & 0x03
		if bitrateIdx == 0 || bitrateIdx == 0x0F || sampleIdx == 3 {
			continue
		}
		return mpeg1Layer3Bitrates[bitrateIdx] * 1000, true
	}
	return 0, false
}

func hasFrameSync(audio []byte) bool {
	for i := 0; i+2 <= len(audio) && i < probeWindow; i++ {
		if audio[i] == 0xFF && audio[i+1]&0xE0 == 0xE0 {
			return true
		}
	}
	return false
}
