package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"curator/internal/asset"
	"curator/internal/media"
	"curator/internal/pipeline"
)

// ConvertOptions configures a conversion operator.
type ConvertOptions struct {
	// MIMEType is the target image type.
	MIMEType string
	// Quality is the JPEG encode quality. Zero means 90.
	Quality int
}

// Convert builds an operator that re-encodes image assets as the target
// type, keeping dimensions and descriptive attributes.
func Convert(opts ConvertOptions) (pipeline.Operator, error) {
	target := strings.ToLower(strings.TrimSpace(opts.MIMEType))
	switch target {
	case "image/jpeg", "image/png", "image/gif":
	default:
		return nil, media.Wrap(media.ErrUnsupportedFormat, "imaging", "convert",
			fmt.Sprintf("cannot encode %q", opts.MIMEType), nil)
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
		essence, err := encodeImage(src, target, quality)
		if err != nil {
			return nil, err
		}
		attrs := a.Attributes()
		attrs.MIMEType = target
		return asset.New(essence, attrs), nil
	}, nil
}

func decodeImageAsset(a *asset.Asset) (image.Image, error) {
	if a == nil {
		return nil, media.Wrap(media.ErrValidation, "imaging", "decode", "asset is nil", nil)
	}
	switch a.MIMEType() {
	case "image/jpeg", "image/png", "image/gif":
	default:
		return nil, media.Wrap(media.ErrUnsupportedFormat, "imaging", "decode",
			fmt.Sprintf("cannot decode %q", a.MIMEType()), nil)
	}
	img, _, err := image.Decode(a.Essence())
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "imaging", "decode", "decode image", err)
	}
	return img, nil
}

func encodeImage(img image.Image, mimeType string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch mimeType {
	case "image/jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "image/png":
		err = png.Encode(&buf, img)
	case "image/gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, media.Wrap(media.ErrUnsupportedFormat, "imaging", "encode",
			fmt.Sprintf("cannot encode %q", mimeType), nil)
	}
	if err != nil {
		return nil, media.Wrap(media.ErrOperator, "imaging", "encode",
			fmt.Sprintf("encode %s", mimeType), err)
	}
	return buf.Bytes(), nil
}
