package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/media/ffmpeg"
)

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var (
		to          string
		at          time.Duration
		output      string
		essenceOnly bool
	)

	cmd := &cobra.Command{
		Use:   "frame <file>",
		Short: "Extract a still frame from a video container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			if !cfg.Tools.FFmpegEnabled {
				return errors.New("frame extraction needs ffmpeg; set tools.ffmpeg_enabled in the configuration")
			}

			op, err := ffmpeg.ExtractFrame(ffmpeg.FrameOptions{
				MIMEType: to,
				Offset:   at,
			},
				ffmpeg.WithFFmpegBinary(cfg.FFmpegBinary()),
				ffmpeg.WithFFprobeBinary(cfg.FFprobeBinary()),
			)
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
				targetPath = defaultOutputPath(args[0], ".frame", result.MIMEType())
			}
			return writeAssetOutput(cmd, registry, result, targetPath, essenceOnly)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Frame image type (defaults to image/jpeg)")
	cmd.Flags().DurationVar(&at, "at", 0, "Timestamp to extract, such as 2s or 1m30s")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults next to the input)")
	cmd.Flags().BoolVar(&essenceOnly, "essence-only", false, "Write the bare essence without metadata")
	return cmd
}
