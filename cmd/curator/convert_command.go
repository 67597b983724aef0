package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/media/ffmpeg"
	"curator/internal/media/imaging"
	"curator/internal/pipeline"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		to          string
		videoCodec  string
		audioCodec  string
		quality     int
		output      string
		essenceOnly bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Re-encode an asset as another type",
		Long: `Re-encode an asset as another type.

Image targets (image/jpeg, image/png, image/gif) run through the pure-Go
encoder. Container targets remux through ffmpeg; pass --video-codec or
--audio-codec to transcode streams instead of copying them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}

			target := strings.ToLower(strings.TrimSpace(to))
			var op pipeline.Operator
			if strings.HasPrefix(target, "image/") {
				if quality == 0 {
					quality = cfg.Imaging.JPEGQuality
				}
				op, err = imaging.Convert(imaging.ConvertOptions{MIMEType: target, Quality: quality})
			} else {
				if !cfg.Tools.FFmpegEnabled {
					return errors.New("converting to container formats needs ffmpeg; set tools.ffmpeg_enabled in the configuration")
				}
				op, err = ffmpeg.Convert(ffmpeg.ConvertOptions{
					MIMEType:   target,
					VideoCodec: videoCodec,
					AudioCodec: audioCodec,
				},
					ffmpeg.WithFFmpegBinary(cfg.FFmpegBinary()),
					ffmpeg.WithFFprobeBinary(cfg.FFprobeBinary()),
				)
			}
			if err != nil {
				return err
			}

			a, err := registry.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := ctx.runOperator(cmd.Context(), a, op)
			if err != nil {
				return err
			}

			targetPath := strings.TrimSpace(output)
			if targetPath == "" {
				targetPath = defaultOutputPath(args[0], "", target)
			}
			return writeAssetOutput(cmd, registry, result, targetPath, essenceOnly)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target MIME type")
	cmd.Flags().StringVar(&videoCodec, "video-codec", "", "Video codec for container targets (default copies streams)")
	cmd.Flags().StringVar(&audioCodec, "audio-codec", "", "Audio codec for container targets (default copies streams)")
	cmd.Flags().IntVar(&quality, "quality", 0, "JPEG encode quality for image targets")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults next to the input)")
	cmd.Flags().BoolVar(&essenceOnly, "essence-only", false, "Write the bare essence without metadata")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
