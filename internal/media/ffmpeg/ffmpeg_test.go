package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"curator/internal/media"
)

const probeVideoJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2}
  ],
  "format": {
    "filename": "input.mkv",
    "nb_streams": 2,
    "format_name": "matroska,webm",
    "duration": "12.500000",
    "size": "1048576",
    "bit_rate": "671088",
    "tags": {"ARTIST": "Maya Deren", "title": "Meshes of the Afternoon"}
  }
}`

const probeAudioJSON = `{
  "streams": [
    {"index": 0, "codec_name": "flac", "codec_type": "audio", "sample_rate": "44100", "channels": 2}
  ],
  "format": {
    "filename": "input.flac",
    "nb_streams": 1,
    "format_name": "flac",
    "duration": "180.000000",
    "size": "2097152",
    "bit_rate": "93206",
    "tags": {"album": "Kind of Blue"}
  }
}`

const helperEssence = "remuxed by helper\n"

const helperMetadata = ";FFMETADATA1\ntitle=Meshes of the Afternoon\nartist=Maya Deren\n"

type commandRecord struct {
	name string
	args []string
}

// setHelperCommand reroutes every spawned binary to the test binary itself.
// ffprobe invocations run in probeMode, ffmpeg invocations in ffmpegMode, and
// the helper learns where the invocation wanted its output written so it can
// produce the file the caller reads back.
func setHelperCommand(t *testing.T, probeMode, ffmpegMode string) *[]commandRecord {
	t.Helper()
	records := &[]commandRecord{}
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*records = append(*records, commandRecord{name: name, args: append([]string(nil), args...)})
		mode := ffmpegMode
		if strings.Contains(name, "ffprobe") {
			mode = probeMode
		}
		out := ""
		if len(args) > 0 {
			out = args[len(args)-1]
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode),
			fmt.Sprintf("FFMPEG_HELPER_OUT=%s", out),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return records
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	out := os.Getenv("FFMPEG_HELPER_OUT")
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "probe-video":
		fmt.Println(probeVideoJSON)
		os.Exit(0)
	case "probe-audio":
		fmt.Println(probeAudioJSON)
		os.Exit(0)
	case "write":
		if err := os.WriteFile(out, []byte(helperEssence), 0o600); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case "metadata":
		if err := os.WriteFile(out, []byte(helperMetadata), 0o600); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case "metadata-empty":
		if err := os.WriteFile(out, []byte(";FFMETADATA1\n"), 0o600); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "conversion failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	idx := findArg(args, flag)
	if idx == -1 {
		t.Fatalf("expected args to include %s, got %v", flag, args)
	}
	if idx+1 >= len(args) {
		t.Fatalf("%s flag missing value in args %v", flag, args)
	}
	return args[idx+1]
}

func matroskaBytes() []byte {
	return append([]byte{0x1A, 0x45, 0xDF, 0xA3}, []byte("fake matroska payload")...)
}

func flacBytes() []byte {
	return append([]byte("fLaC"), []byte("fake flac payload")...)
}

func TestSniffContainer(t *testing.T) {
	cases := []struct {
		name   string
		prefix []byte
		want   string
	}{
		{"matroska", matroskaBytes(), "video/x-matroska"},
		{"mp4", []byte("\x00\x00\x00\x18ftypisom"), "video/mp4"},
		{"ogg", []byte("OggS\x00\x02"), "application/ogg"},
		{"wav", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), "audio/x-wav"},
		{"flac", flacBytes(), "audio/flac"},
		{"text", []byte("plain text, not a container"), ""},
		{"short", []byte{0x1A}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sniffContainer(tc.prefix); got != tc.want {
				t.Fatalf("sniffContainer(%q) = %q, want %q", tc.prefix, got, tc.want)
			}
		})
	}
}

func TestProcessorCanRead(t *testing.T) {
	p := NewProcessor()
	ctx := context.Background()

	if !p.CanRead(ctx, bytes.NewReader(matroskaBytes())) {
		t.Fatal("expected CanRead to claim matroska data")
	}
	if !p.CanRead(ctx, bytes.NewReader([]byte("RIFF\x24\x08\x00\x00WAVEfmt "))) {
		t.Fatal("expected CanRead to claim wav data")
	}
	if p.CanRead(ctx, bytes.NewReader([]byte("not a container"))) {
		t.Fatal("expected CanRead to reject plain text")
	}
}

func TestProbeParsesResult(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	result, err := Probe(context.Background(), matroskaBytes())
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}

	if len(result.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(result.Streams))
	}
	video := result.VideoStream()
	if video == nil {
		t.Fatal("expected a video stream")
	}
	if video.Width != 1280 || video.Height != 720 {
		t.Fatalf("expected 1280x720, got %dx%d", video.Width, video.Height)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("expected duration 12.5, got %f", result.DurationSeconds())
	}
	if got := result.MIMEType(); got != "video/x-matroska" {
		t.Fatalf("expected matroska MIME type, got %q", got)
	}
	if got := result.tag("artist"); got != "Maya Deren" {
		t.Fatalf("expected artist tag lookup to cross casing, got %q", got)
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}

	if len(*records) != 1 {
		t.Fatalf("expected exactly one ffprobe invocation, got %d", len(*records))
	}
	args := (*records)[0].args
	if findArg(args, "-show_streams") == -1 || findArg(args, "-show_format") == -1 {
		t.Fatalf("expected probe args to request format and streams, got %v", args)
	}
	if got := argValue(t, args, "-of"); got != "json" {
		t.Fatalf("expected json output format, got %q", got)
	}
}

func TestProbeFailure(t *testing.T) {
	setHelperCommand(t, "fail", "fail")

	_, err := Probe(context.Background(), matroskaBytes())
	if err == nil {
		t.Fatal("expected probe failure")
	}
	if !errors.Is(err, media.ErrOperator) {
		t.Fatalf("expected operator classification, got %v", err)
	}
}

func TestProcessorReadBuildsAsset(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	p := NewProcessor()
	a, err := p.Read(context.Background(), bytes.NewReader(matroskaBytes()))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	attrs := a.Attributes()
	if attrs.MIMEType != "video/x-matroska" {
		t.Fatalf("expected matroska MIME type, got %q", attrs.MIMEType)
	}
	if attrs.Width != 1280 || attrs.Height != 720 {
		t.Fatalf("expected 1280x720, got %dx%d", attrs.Width, attrs.Height)
	}
	if attrs.Duration != 12500*time.Millisecond {
		t.Fatalf("expected 12.5s duration, got %s", attrs.Duration)
	}
	if attrs.Artist != "Maya Deren" || attrs.Title != "Meshes of the Afternoon" {
		t.Fatalf("expected probe tags in attributes, got %+v", attrs)
	}
	if !bytes.Equal(a.EssenceBytes(), []byte(helperEssence)) {
		t.Fatalf("expected stripped essence from remux, got %q", a.EssenceBytes())
	}
	if len(a.Namespaces()) != 0 {
		t.Fatalf("expected no namespaces from the content processor, got %v", a.Namespaces())
	}

	if len(*records) != 2 {
		t.Fatalf("expected ffprobe then ffmpeg, got %d invocations", len(*records))
	}
	stripArgs := (*records)[1].args
	if got := argValue(t, stripArgs, "-map_metadata"); got != "-1" {
		t.Fatalf("expected metadata mapping dropped, got %q", got)
	}
	if got := argValue(t, stripArgs, "-c"); got != "copy" {
		t.Fatalf("expected stream copy, got %q", got)
	}
	if got := argValue(t, stripArgs, "-f"); got != "matroska" {
		t.Fatalf("expected matroska muxer, got %q", got)
	}
}

func TestProcessorReadAudioOnly(t *testing.T) {
	setHelperCommand(t, "probe-audio", "write")

	p := NewProcessor()
	a, err := p.Read(context.Background(), bytes.NewReader(flacBytes()))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	attrs := a.Attributes()
	if attrs.MIMEType != "audio/flac" {
		t.Fatalf("expected flac MIME type, got %q", attrs.MIMEType)
	}
	if attrs.Width != 0 || attrs.Height != 0 {
		t.Fatalf("expected no dimensions for audio, got %dx%d", attrs.Width, attrs.Height)
	}
	if attrs.Duration != 3*time.Minute {
		t.Fatalf("expected 3m duration, got %s", attrs.Duration)
	}
	if attrs.Album != "Kind of Blue" {
		t.Fatalf("expected album tag, got %q", attrs.Album)
	}
}

func TestProcessorReadRejectsUnknownData(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	p := NewProcessor()
	_, err := p.Read(context.Background(), bytes.NewReader([]byte("definitely not media")))
	if err == nil {
		t.Fatal("expected read failure for unrecognized data")
	}
	if !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format classification, got %v", err)
	}
	if len(*records) != 0 {
		t.Fatalf("expected no binary invocations for rejected data, got %d", len(*records))
	}
}

func TestRegistryReadAttachesFFMetadata(t *testing.T) {
	// The strip remux and the ffmetadata export both run ffmpeg, so this
	// routes modes by invocation instead of using setHelperCommand.
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		mode := "write"
		if strings.Contains(name, "ffprobe") {
			mode = "probe-video"
		} else if findArg(args, "ffmetadata") != -1 {
			mode = "metadata"
		}
		out := ""
		if len(args) > 0 {
			out = args[len(args)-1]
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode),
			fmt.Sprintf("FFMPEG_HELPER_OUT=%s", out),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	registry := media.NewRegistry()
	if err := registry.Register(NewProcessor()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := registry.RegisterMetadata(NewFFMetadataProcessor()); err != nil {
		t.Fatalf("RegisterMetadata returned error: %v", err)
	}

	a, err := registry.Read(context.Background(), bytes.NewReader(matroskaBytes()))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !bytes.Equal(a.EssenceBytes(), []byte(helperEssence)) {
		t.Fatalf("expected stripped essence, got %q", a.EssenceBytes())
	}

	ns, ok := a.Namespace(FormatFFMetadata)
	if !ok {
		t.Fatalf("expected ffmetadata namespace, got %v", a.Namespaces())
	}
	if got := ns.Field("title"); got != "Meshes of the Afternoon" {
		t.Fatalf("expected exported title, got %q", got)
	}
	if got := ns.Field("artist"); got != "Maya Deren" {
		t.Fatalf("expected exported artist, got %q", got)
	}
}
