package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"curator/internal/asset"
	"curator/internal/media"
)

func containerAsset() *asset.Asset {
	return asset.New([]byte("container payload"), asset.Attributes{
		MIMEType: "video/x-matroska",
		Width:    1280,
		Height:   720,
		Duration: 12500 * time.Millisecond,
		Title:    "Meshes of the Afternoon",
	})
}

func TestConvertRemuxesToTarget(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	op, err := Convert(ConvertOptions{MIMEType: "video/mp4"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	out, err := op(context.Background(), containerAsset())
	if err != nil {
		t.Fatalf("operator returned error: %v", err)
	}
	if out.MIMEType() != "video/mp4" {
		t.Fatalf("expected mp4 MIME type, got %q", out.MIMEType())
	}
	if !bytes.Equal(out.EssenceBytes(), []byte(helperEssence)) {
		t.Fatalf("expected converted essence, got %q", out.EssenceBytes())
	}
	attrs := out.Attributes()
	if attrs.Width != 1280 || attrs.Height != 720 {
		t.Fatalf("expected dimensions carried over, got %dx%d", attrs.Width, attrs.Height)
	}
	if attrs.Title != "Meshes of the Afternoon" {
		t.Fatalf("expected title carried over, got %q", attrs.Title)
	}

	if len(*records) != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", len(*records))
	}
	args := (*records)[0].args
	if got := argValue(t, args, "-f"); got != "mp4" {
		t.Fatalf("expected mp4 muxer, got %q", got)
	}
	if got := argValue(t, args, "-c:v"); got != "copy" {
		t.Fatalf("expected video stream copy by default, got %q", got)
	}
	if got := argValue(t, args, "-c:a"); got != "copy" {
		t.Fatalf("expected audio stream copy by default, got %q", got)
	}
	if last := args[len(args)-1]; !strings.HasSuffix(last, ".mp4") {
		t.Fatalf("expected mp4 output artifact, got %q", last)
	}
}

func TestConvertUsesCodecOverrides(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	op, err := Convert(ConvertOptions{MIMEType: "video/webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if _, err := op(context.Background(), containerAsset()); err != nil {
		t.Fatalf("operator returned error: %v", err)
	}

	args := (*records)[0].args
	if got := argValue(t, args, "-c:v"); got != "libvpx-vp9" {
		t.Fatalf("expected video codec override, got %q", got)
	}
	if got := argValue(t, args, "-c:a"); got != "libopus" {
		t.Fatalf("expected audio codec override, got %q", got)
	}
	if got := argValue(t, args, "-f"); got != "webm" {
		t.Fatalf("expected webm muxer, got %q", got)
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	op, err := Convert(ConvertOptions{MIMEType: "video/avi"})
	if err == nil {
		t.Fatal("expected factory failure for unknown target")
	}
	if !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format classification, got %v", err)
	}
	if op != nil {
		t.Fatal("expected nil operator on factory failure")
	}
}

func TestConvertRejectsUnsupportedSource(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	op, err := Convert(ConvertOptions{MIMEType: "video/mp4"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	png := asset.New([]byte("png payload"), asset.Attributes{MIMEType: "image/png"})
	if _, err := op(context.Background(), png); !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format classification, got %v", err)
	}
	if len(*records) != 0 {
		t.Fatalf("expected no binary invocations, got %d", len(*records))
	}
}

func TestConvertWrapsExecFailure(t *testing.T) {
	setHelperCommand(t, "probe-video", "fail")

	op, err := Convert(ConvertOptions{MIMEType: "video/mp4"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	_, err = op(context.Background(), containerAsset())
	if err == nil {
		t.Fatal("expected conversion failure")
	}
	if !errors.Is(err, media.ErrOperator) {
		t.Fatalf("expected operator classification, got %v", err)
	}
}

func TestExtractFrameDefaultsToJPEG(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	op, err := ExtractFrame(FrameOptions{Offset: 2 * time.Second})
	if err != nil {
		t.Fatalf("ExtractFrame returned error: %v", err)
	}

	out, err := op(context.Background(), containerAsset())
	if err != nil {
		t.Fatalf("operator returned error: %v", err)
	}
	if out.MIMEType() != "image/jpeg" {
		t.Fatalf("expected jpeg MIME type, got %q", out.MIMEType())
	}
	attrs := out.Attributes()
	if attrs.Duration != 0 {
		t.Fatalf("expected zero duration for a still, got %s", attrs.Duration)
	}
	if attrs.Width != 1280 || attrs.Height != 720 {
		t.Fatalf("expected source dimensions, got %dx%d", attrs.Width, attrs.Height)
	}

	args := (*records)[0].args
	if got := argValue(t, args, "-ss"); got != "2" {
		t.Fatalf("expected 2 second seek, got %q", got)
	}
	if got := argValue(t, args, "-frames:v"); got != "1" {
		t.Fatalf("expected single frame, got %q", got)
	}
	if got := argValue(t, args, "-c:v"); got != "mjpeg" {
		t.Fatalf("expected mjpeg encoder, got %q", got)
	}
	if got := argValue(t, args, "-f"); got != "image2" {
		t.Fatalf("expected image2 muxer, got %q", got)
	}
}

func TestExtractFrameFractionalOffset(t *testing.T) {
	records := setHelperCommand(t, "probe-video", "write")

	op, err := ExtractFrame(FrameOptions{MIMEType: "image/png", Offset: 1500 * time.Millisecond})
	if err != nil {
		t.Fatalf("ExtractFrame returned error: %v", err)
	}
	out, err := op(context.Background(), containerAsset())
	if err != nil {
		t.Fatalf("operator returned error: %v", err)
	}
	if out.MIMEType() != "image/png" {
		t.Fatalf("expected png MIME type, got %q", out.MIMEType())
	}

	args := (*records)[0].args
	if got := argValue(t, args, "-ss"); got != "1.5" {
		t.Fatalf("expected fractional seek, got %q", got)
	}
	if got := argValue(t, args, "-c:v"); got != "png" {
		t.Fatalf("expected png encoder, got %q", got)
	}
}

func TestExtractFrameRejectsBadOptions(t *testing.T) {
	if _, err := ExtractFrame(FrameOptions{MIMEType: "image/gif"}); !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format for gif target, got %v", err)
	}
	if _, err := ExtractFrame(FrameOptions{Offset: -time.Second}); !errors.Is(err, media.ErrValidation) {
		t.Fatalf("expected validation failure for negative offset, got %v", err)
	}
}
