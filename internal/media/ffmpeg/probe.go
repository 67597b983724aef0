package ffmpeg

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"curator/internal/media"
)

// Result captures the ffprobe JSON output for a probed stream of bytes.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`

	raw []byte
}

// Stream describes a single audio, video, or data stream.
type Stream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	SampleRate string            `json:"sample_rate"`
	Channels   int               `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

// Format describes container-level information.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

// Probe runs ffprobe over a byte payload and returns the parsed result.
func Probe(ctx context.Context, data []byte, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	path, err := writeTemp(data, "")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	return probePath(ctx, o, path)
}

func probePath(ctx context.Context, o Options, path string) (*Result, error) {
	output, err := runCommand(ctx, o.ffprobe,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	if err != nil {
		return nil, media.Wrap(media.ErrOperator, "ffmpeg", "probe", "", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, media.Wrap(media.ErrValidation, "ffmpeg", "probe", "parse ffprobe output", err)
	}
	result.raw = output
	return &result, nil
}

// RawJSON returns the unparsed ffprobe output.
func (r *Result) RawJSON() []byte {
	return r.raw
}

// VideoStream returns the first video stream, or nil when none exists.
func (r *Result) VideoStream() *Stream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "video" {
			return &r.Streams[i]
		}
	}
	return nil
}

// AudioStreamCount reports how many audio streams the container carries.
func (r *Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if stream.CodecType == "audio" {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration, or zero when unknown.
func (r *Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// MIMEType maps the probed format name onto the container MIME type the
// package claims, or returns an empty string for unrecognized formats.
// The matroska demuxer reports both .mkv and .webm payloads as
// "matroska,webm"; those resolve to the matroska superset.
func (r *Result) MIMEType() string {
	name := r.Format.FormatName
	switch {
	case strings.Contains(name, "matroska"):
		return "video/x-matroska"
	case strings.Contains(name, "mp4"):
		return "video/mp4"
	case name == "ogg":
		return "application/ogg"
	case name == "wav":
		return "audio/x-wav"
	case name == "flac":
		return "audio/flac"
	default:
		return ""
	}
}

// tag fetches a format-level tag, trying lowercase and uppercase keys the
// way muxers disagree about casing.
func (r *Result) tag(name string) string {
	if v, ok := r.Format.Tags[name]; ok {
		return v
	}
	if v, ok := r.Format.Tags[strings.ToUpper(name)]; ok {
		return v
	}
	for key, v := range r.Format.Tags {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
