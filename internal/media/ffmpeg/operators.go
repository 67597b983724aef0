package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"curator/internal/asset"
	"curator/internal/media"
	"curator/internal/pipeline"
)

// ConvertOptions select the target container and optional codec overrides
// for Convert. Empty codecs mean stream copy.
type ConvertOptions struct {
	MIMEType   string
	VideoCodec string
	AudioCodec string
}

// Convert returns an operator that remuxes or transcodes assets into the
// target container. Unknown targets fail at build time.
func Convert(opts ConvertOptions, options ...Option) (pipeline.Operator, error) {
	target := strings.ToLower(strings.TrimSpace(opts.MIMEType))
	spec, ok := containers[target]
	if !ok {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "ffmpeg", "convert",
			fmt.Sprintf("cannot convert to %q", opts.MIMEType), nil)
	}
	videoCodec := opts.VideoCodec
	if videoCodec == "" {
		videoCodec = "copy"
	}
	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = "copy"
	}
	o := newOptions(options)

	return func(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, sourceSpec, err := spoolAsset(a, "convert")
		if err != nil {
			return nil, err
		}
		defer os.Remove(in)

		out := tempPath(spec.ext)
		defer os.Remove(out)
		if _, err := runCommand(ctx, o.ffmpeg,
			"-v", "error", "-y",
			"-i", in,
			"-c:v", videoCodec,
			"-c:a", audioCodec,
			"-f", spec.muxer,
			out,
		); err != nil {
			return nil, media.Wrap(media.ErrOperator, "ffmpeg", "convert",
				fmt.Sprintf("%s to %s", sourceSpec.muxer, spec.muxer), err)
		}
		converted, err := os.ReadFile(out)
		if err != nil {
			return nil, media.Wrap(media.ErrOperator, "ffmpeg", "convert", "read output", err)
		}

		attrs := a.Attributes()
		attrs.MIMEType = target
		return asset.New(converted, attrs), nil
	}, nil
}

// FrameOptions select the still format and seek offset for ExtractFrame. An
// empty MIMEType means JPEG.
type FrameOptions struct {
	MIMEType string
	Offset   time.Duration
}

// ExtractFrame returns an operator that grabs a single video frame as a
// still image. Targets outside frameTargets and negative offsets fail at
// build time.
func ExtractFrame(opts FrameOptions, options ...Option) (pipeline.Operator, error) {
	target := strings.ToLower(strings.TrimSpace(opts.MIMEType))
	if target == "" {
		target = "image/jpeg"
	}
	spec, ok := frameTargets[target]
	if !ok {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "ffmpeg", "extract frame",
			fmt.Sprintf("cannot extract to %q", opts.MIMEType), nil)
	}
	if opts.Offset < 0 {
		return nil, media.Wrap(media.ErrValidation, "ffmpeg", "extract frame",
			fmt.Sprintf("negative offset %s", opts.Offset), nil)
	}
	offset := strconv.FormatFloat(opts.Offset.Seconds(), 'f', -1, 64)
	o := newOptions(options)

	return func(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, _, err := spoolAsset(a, "extract frame")
		if err != nil {
			return nil, err
		}
		defer os.Remove(in)

		out := tempPath(spec.ext)
		defer os.Remove(out)
		if _, err := runCommand(ctx, o.ffmpeg,
			"-v", "error", "-y",
			"-ss", offset,
			"-i", in,
			"-frames:v", "1",
			"-c:v", spec.encoder,
			"-f", "image2",
			out,
		); err != nil {
			return nil, media.Wrap(media.ErrOperator, "ffmpeg", "extract frame", "", err)
		}
		frame, err := os.ReadFile(out)
		if err != nil {
			return nil, media.Wrap(media.ErrOperator, "ffmpeg", "extract frame", "read output", err)
		}

		attrs := a.Attributes()
		attrs.MIMEType = target
		attrs.Duration = 0
		return asset.New(frame, attrs), nil
	}, nil
}

// spoolAsset writes a container asset's essence to a temp file for ffmpeg
// input. Assets outside the supported containers are rejected.
func spoolAsset(a *asset.Asset, operation string) (string, container, error) {
	if a == nil {
		return "", container{}, media.Wrap(media.ErrValidation, "ffmpeg", operation, "nil asset", nil)
	}
	spec, ok := containers[a.MIMEType()]
	if !ok {
		return "", container{}, media.Wrap(media.ErrUnsupportedFormat, "ffmpeg", operation,
			fmt.Sprintf("cannot process %q", a.MIMEType()), nil)
	}
	path, err := writeTemp(a.EssenceBytes(), spec.ext)
	if err != nil {
		return "", container{}, err
	}
	return path, spec, nil
}
