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

func TestTargetSizeModes(t *testing.T) {
	cases := []struct {
		name         string
		srcW, srcH   int
		tw, th       int
		mode         Mode
		wantW, wantH int
	}{
		{"exact ignores ratio", 100, 50, 60, 60, ModeExact, 60, 60},
		{"fit shrinks inside box", 100, 50, 60, 60, ModeFit, 60, 30},
		{"fill covers box", 100, 50, 60, 60, ModeFill, 120, 60},
		{"fit wide strip", 100, 10, 90, 5, ModeFit, 50, 5},
		{"fill wide strip", 100, 10, 90, 5, ModeFill, 90, 9},
		{"fit upscales", 10, 10, 30, 40, ModeFit, 30, 30},
		{"fill upscales", 10, 10, 30, 40, ModeFill, 40, 40},
		{"rounds half away from zero", 10, 5, 5, 5, ModeFit, 5, 3},
		{"clamps to one pixel", 100, 1, 10, 10, ModeFit, 10, 1},
	}
	for _, tc := range cases {
		w, h := targetSize(tc.srcW, tc.srcH, tc.tw, tc.th, tc.mode)
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("%s: targetSize = %dx%d, want %dx%d", tc.name, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestResizeOperatorScalesImage(t *testing.T) {
	src := asset.New(testsupport.PNGImage(t, 100, 50), asset.Attributes{
		MIMEType: "image/png",
		Width:    100,
		Height:   50,
		Artist:   "Dorothea",
	})

	op, err := Resize(ResizeOptions{Width: 60, Height: 60, Mode: ModeFit})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	out, err := op(context.Background(), src)
	if err != nil {
		t.Fatalf("operator failed: %v", err)
	}

	attrs := out.Attributes()
	if attrs.Width != 60 || attrs.Height != 30 {
		t.Fatalf("attributes report %dx%d, want 60x30", attrs.Width, attrs.Height)
	}
	if attrs.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want image/png", attrs.MIMEType)
	}
	if attrs.Artist != "Dorothea" {
		t.Fatalf("Artist = %q, resize must keep descriptive attributes", attrs.Artist)
	}

	cfg, format, err := image.DecodeConfig(out.Essence())
	if err != nil {
		t.Fatalf("decode resized essence: %v", err)
	}
	if format != "png" || cfg.Width != 60 || cfg.Height != 30 {
		t.Fatalf("resized essence is %s %dx%d, want png 60x30", format, cfg.Width, cfg.Height)
	}
}

func TestResizeFactoryValidation(t *testing.T) {
	cases := []struct {
		name string
		opts ResizeOptions
	}{
		{"zero width", ResizeOptions{Width: 0, Height: 10}},
		{"negative height", ResizeOptions{Width: 10, Height: -1}},
		{"unknown filter", ResizeOptions{Width: 10, Height: 10, Filter: "sinc"}},
		{"unknown mode", ResizeOptions{Width: 10, Height: 10, Mode: Mode(9)}},
		{"quality out of range", ResizeOptions{Width: 10, Height: 10, Quality: 101}},
	}
	for _, tc := range cases {
		if _, err := Resize(tc.opts); !errors.Is(err, media.ErrValidation) {
			t.Fatalf("%s: error = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestResizeRejectsNonImageSource(t *testing.T) {
	op, err := Resize(ResizeOptions{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	src := asset.New([]byte("words"), asset.Attributes{MIMEType: "text/plain"})
	if _, err := op(context.Background(), src); !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Fatalf("operator error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestResizeHonorsFilterSelection(t *testing.T) {
	src := asset.New(testsupport.PNGImage(t, 20, 20), asset.Attributes{
		MIMEType: "image/png", Width: 20, Height: 20,
	})
	for _, filter := range []string{FilterNearest, FilterBiLinear, FilterCatmullRom} {
		op, err := Resize(ResizeOptions{Width: 10, Height: 10, Filter: filter})
		if err != nil {
			t.Fatalf("Resize(%s) failed: %v", filter, err)
		}
		out, err := op(context.Background(), src)
		if err != nil {
			t.Fatalf("operator(%s) failed: %v", filter, err)
		}
		if out.Attributes().Width != 10 {
			t.Fatalf("filter %s produced width %d", filter, out.Attributes().Width)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"", ModeExact},
		{"exact", ModeExact},
		{"fit", ModeFit},
		{"FILL", ModeFill},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, %v", tc.in, got, err)
		}
	}
	if _, err := ParseMode("diagonal"); !errors.Is(err, media.ErrValidation) {
		t.Fatalf("ParseMode error = %v, want ErrValidation", err)
	}
}
