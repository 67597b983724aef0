package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"curator/internal/media"
)

var commandContext = exec.CommandContext

// Options carry the binary locations shared by the package's collaborators.
type Options struct {
	ffmpeg  string
	ffprobe string
}

// Option configures the ffmpeg and ffprobe invocations.
type Option func(*Options)

// WithFFmpegBinary overrides the default ffmpeg binary name.
func WithFFmpegBinary(binary string) Option {
	return func(o *Options) {
		if strings.TrimSpace(binary) != "" {
			o.ffmpeg = binary
		}
	}
}

// WithFFprobeBinary overrides the default ffprobe binary name.
func WithFFprobeBinary(binary string) Option {
	return func(o *Options) {
		if strings.TrimSpace(binary) != "" {
			o.ffprobe = binary
		}
	}
}

func newOptions(opts []Option) Options {
	o := Options{ffmpeg: "ffmpeg", ffprobe: "ffprobe"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type container struct {
	muxer string
	ext   string
}

// containers maps the supported MIME types to ffmpeg muxer names and file
// extensions. The extension matters: ffmpeg picks demuxers by suffix when
// reading temp artifacts.
var containers = map[string]container{
	"video/x-matroska": {muxer: "matroska", ext: ".mkv"},
	"video/webm":       {muxer: "webm", ext: ".webm"},
	"video/mp4":        {muxer: "mp4", ext: ".mp4"},
	"application/ogg":  {muxer: "ogg", ext: ".ogg"},
	"audio/x-wav":      {muxer: "wav", ext: ".wav"},
	"audio/flac":       {muxer: "flac", ext: ".flac"},
}

type frameTarget struct {
	encoder string
	ext     string
}

// frameTargets maps frame extraction targets to ffmpeg video encoders.
var frameTargets = map[string]frameTarget{
	"image/jpeg": {encoder: "mjpeg", ext: ".jpg"},
	"image/png":  {encoder: "png", ext: ".png"},
}

// writeTemp spills bytes to a uniquely named file under the system temp
// directory. Containers like mp4 need seekable input and output, so the
// package always works through temp artifacts rather than pipes.
func writeTemp(data []byte, ext string) (string, error) {
	path := filepath.Join(os.TempDir(), "curator-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", media.Wrap(media.ErrOperator, "ffmpeg", "spool", "write temp artifact", err)
	}
	return path, nil
}

func tempPath(ext string) string {
	return filepath.Join(os.TempDir(), "curator-"+uuid.NewString()+ext)
}

// runCommand executes a binary and returns its combined output, wrapping
// failures with trimmed diagnostics the way probe errors read best.
func runCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := commandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}
