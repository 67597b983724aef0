package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/media/imaging"
)

func newResizeCommand(ctx *commandContext) *cobra.Command {
	var (
		width       int
		height      int
		mode        string
		filter      string
		quality     int
		output      string
		essenceOnly bool
	)

	cmd := &cobra.Command{
		Use:   "resize <file>",
		Short: "Scale an image to a target box",
		Long: `Scale an image to a target box.

Modes:
  exact  force the exact dimensions, ignoring aspect ratio (default)
  fit    largest size that fits inside the box, keeping aspect ratio
  fill   smallest size that covers the box, keeping aspect ratio`,
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

			resizeMode, err := imaging.ParseMode(mode)
			if err != nil {
				return err
			}
			if strings.TrimSpace(filter) == "" {
				filter = cfg.Imaging.ResizeFilter
			}
			if quality == 0 {
				quality = cfg.Imaging.JPEGQuality
			}
			op, err := imaging.Resize(imaging.ResizeOptions{
				Width:   width,
				Height:  height,
				Mode:    resizeMode,
				Filter:  filter,
				Quality: quality,
			})
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

			target := strings.TrimSpace(output)
			if target == "" {
				target = defaultOutputPath(args[0], fmt.Sprintf(".%dx%d", width, height), "")
			}
			return writeAssetOutput(cmd, registry, result, target, essenceOnly)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Target width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Target height in pixels")
	cmd.Flags().StringVar(&mode, "mode", "", "Resize mode: exact, fit, or fill")
	cmd.Flags().StringVar(&filter, "filter", "", "Scaling kernel: nearest, bilinear, or catmullrom")
	cmd.Flags().IntVar(&quality, "quality", 0, "JPEG re-encode quality")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults next to the input)")
	cmd.Flags().BoolVar(&essenceOnly, "essence-only", false, "Write the bare essence without metadata")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}
