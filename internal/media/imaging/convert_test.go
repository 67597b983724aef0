package imaging

import (
	"context"
	"errors"
	"image"
	"testing"

	"curator/internal/asset"
	"curator/internal/media"
	"curator/internal/testsupport"
)

func TestConvertReencodesBetweenFormats(t *testing.T) {
	src := asset.New(testsupport.JPEGImage(t, 24, 16), asset.Attributes{
		MIMEType: "image/jpeg",
		Width:    24,
		Height:   16,
		Artist:   "Walker",
	})

	op, err := Convert(ConvertOptions{MIMEType: "image/png"})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	out, err := op(context.Background(), src)
	if err != nil {
		t.Fatalf("operator failed: %v", err)
	}

	attrs := out.Attributes()
	if attrs.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want image/png", attrs.MIMEType)
	}
	if attrs.Width != 24 || attrs.Height != 16 {
		t.Fatalf("dimensions changed to %dx%d", attrs.Width, attrs.Height)
	}
	if attrs.Artist != "Walker" {
		t.Fatalf("Artist = %q, convert must keep descriptive attributes", attrs.Artist)
	}

	cfg, format, err := image.DecodeConfig(out.Essence())
	if err != nil {
		t.Fatalf("decode converted essence: %v", err)
	}
	if format != "png" || cfg.Width != 24 || cfg.Height != 16 {
		t.Fatalf("converted essence is %s %dx%d, want png 24x16", format, cfg.Width, cfg.Height)
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	if _, err := Convert(ConvertOptions{MIMEType: "image/webp"}); !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("Convert error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConvertRejectsBadQuality(t *testing.T) {
	if _, err := Convert(ConvertOptions{MIMEType: "image/jpeg", Quality: 999}); !errors.Is(err, media.ErrValidation) {
		t.Fatalf("Convert error = %v, want ErrValidation", err)
	}
}

func TestConvertRejectsNonImageSource(t *testing.T) {
	op, err := Convert(ConvertOptions{MIMEType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	src := asset.New([]byte("words"), asset.Attributes{MIMEType: "text/plain"})
	if _, err := op(context.Background(), src); !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("operator error = %v, want ErrUnsupportedFormat", err)
	}
}
