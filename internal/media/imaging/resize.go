package imaging

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"curator/internal/asset"
	"curator/internal/media"
	"curator/internal/pipeline"
)

// Mode selects how the target dimensions constrain a resize.
type Mode int

const (
	// ModeExact forces the exact target dimensions, ignoring aspect ratio.
	ModeExact Mode = iota
	// ModeFit scales to the largest size that fits inside the target box
	// while keeping the aspect ratio.
	ModeFit
	// ModeFill scales to the smallest size that covers the target box while
	// keeping the aspect ratio.
	ModeFill
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeFit:
		return "fit"
	case ModeFill:
		return "fill"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a flag or config value to a Mode. Empty means exact.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "exact":
		return ModeExact, nil
	case "fit":
		return ModeFit, nil
	case "fill":
		return ModeFill, nil
	}
	return ModeExact, media.Wrap(media.ErrValidation, "imaging", "resize",
		fmt.Sprintf("unknown mode %q", value), nil)
}

// Filter names accepted by ResizeOptions.
const (
	FilterNearest    = "nearest"
	FilterBiLinear   = "bilinear"
	FilterCatmullRom = "catmullrom"
)

const defaultJPEGQuality = 90

// ResizeOptions configures a resize operator.
type ResizeOptions struct {
	Width  int
	Height int
	Mode   Mode
	// Filter names the scaling kernel. Empty means catmullrom.
	Filter string
	// Quality is the JPEG re-encode quality. Zero means 90.
	Quality int
}

// Resize builds an operator that scales image assets to the target
// dimensions and re-encodes them in their source format.
func Resize(opts ResizeOptions) (pipeline.Operator, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, media.Wrap(media.ErrValidation, "imaging", "resize",
			fmt.Sprintf("target %dx%d must be positive", opts.Width, opts.Height), nil)
	}
	switch opts.Mode {
	case ModeExact, ModeFit, ModeFill:
	default:
		return nil, media.Wrap(media.ErrValidation, "imaging", "resize",
			fmt.Sprintf("unknown mode %d", int(opts.Mode)), nil)
	}
	scaler, err := scalerFor(opts.Filter)
	if err != nil {
		return nil, err
	}
	quality, err := jpegQuality(opts.Quality)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := decodeImageAsset(a)
		if err != nil {
			return nil, err
		}
		bounds := src.Bounds()
		width, height := targetSize(bounds.Dx(), bounds.Dy(), opts.Width, opts.Height, opts.Mode)
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		scaler.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

		essence, err := encodeImage(dst, a.MIMEType(), quality)
		if err != nil {
			return nil, err
		}
		attrs := a.Attributes()
		attrs.Width = width
		attrs.Height = height
		return asset.New(essence, attrs), nil
	}, nil
}

// targetSize applies the mode. Fit scales by the smaller of the two axis
// ratios so the result always sits inside the box; fill scales by the larger
// so the result always covers it. Rounding is half away from zero with a
// floor of one pixel.
func targetSize(srcW, srcH, targetW, targetH int, mode Mode) (int, int) {
	if mode == ModeExact || srcW <= 0 || srcH <= 0 {
		return targetW, targetH
	}
	ratioW := float64(targetW) / float64(srcW)
	ratioH := float64(targetH) / float64(srcH)
	scale := ratioW
	switch mode {
	case ModeFit:
		if ratioH < ratioW {
			scale = ratioH
		}
	case ModeFill:
		if ratioH > ratioW {
			scale = ratioH
		}
	}
	width := int(math.Round(float64(srcW) * scale))
	height := int(math.Round(float64(srcH) * scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

func scalerFor(name string) (draw.Scaler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FilterCatmullRom:
		return draw.CatmullRom, nil
	case FilterBiLinear:
		return draw.ApproxBiLinear, nil
	case FilterNearest:
		return draw.NearestNeighbor, nil
	}
	return nil, media.Wrap(media.ErrValidation, "imaging", "resize",
		fmt.Sprintf("unknown filter %q", name), nil)
}

func jpegQuality(quality int) (int, error) {
	if quality == 0 {
		return defaultJPEGQuality, nil
	}
	if quality < 1 || quality > 100 {
		return 0, media.Wrap(media.ErrValidation, "imaging", "encode",
			fmt.Sprintf("quality %d out of range 1-100", quality), nil)
	}
	return quality, nil
}
